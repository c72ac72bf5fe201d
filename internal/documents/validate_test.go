package documents_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"dmadmin/internal/documents"
)

var (
	pdfBody = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	zipBody = []byte("PK\x03\x04\x14\x00\x00\x00\x08\x00")
	csvBody = []byte("supplier_id,name,lot\n1,Acme Ltd,cloud-hosting\n2,\"Widgets, Inc\",cloud-support\n")
)

func TestSignatures(t *testing.T) {
	tests := []struct {
		name  string
		head  []byte
		isPDF bool
		isZIP bool
		isCSV bool
	}{
		{"pdf", pdfBody, true, false, false},
		{"zip", zipBody, false, true, false},
		{"empty zip", []byte("PK\x05\x06\x00\x00"), false, true, false},
		{"csv", csvBody, false, false, true},
		{"csv with bom", append([]byte("\xef\xbb\xbf"), csvBody...), false, false, true},
		{"ragged csv", []byte("a,b,c\n1,2\n"), false, false, false},
		{"empty", []byte{}, false, false, false},
		{"whitespace", []byte("  \n\n"), false, false, false},
		{"binary", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, false, false, false},
		{"pdf signature not at start", []byte(" %PDF-1.4"), false, false, true},
		{"word document", []byte("\xd0\xcf\x11\xe0\xa1\xb1\x1a\xe1"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := documents.IsPDF(tt.head); got != tt.isPDF {
				t.Errorf("IsPDF() = %v, want %v", got, tt.isPDF)
			}
			if got := documents.IsZIP(tt.head); got != tt.isZIP {
				t.Errorf("IsZIP() = %v, want %v", got, tt.isZIP)
			}
			if got := documents.IsCSV(tt.head); got != tt.isCSV {
				t.Errorf("IsCSV() = %v, want %v", got, tt.isCSV)
			}
		})
	}
}

func TestIsCSVIgnoresTruncatedLastLine(t *testing.T) {
	var b strings.Builder
	for b.Len() < 600 {
		b.WriteString("12345,some supplier name,cloud-hosting\n")
	}
	// Cut inside a quoted field so the partial line would fail to parse.
	body := []byte(b.String()[:511] + "\"")

	if !documents.IsCSV(body) {
		t.Fatal("IsCSV() = false, want true for a large csv cut mid-line")
	}
}

func TestPeekRewinds(t *testing.T) {
	r := bytes.NewReader(pdfBody)
	if _, err := r.Seek(2, io.SeekStart); err != nil {
		t.Fatal(err)
	}

	head, err := documents.Peek(r)
	if err != nil {
		t.Fatalf("Peek() error = %v", err)
	}
	if !bytes.Equal(head, pdfBody[2:]) {
		t.Errorf("Peek() = %q, want %q", head, pdfBody[2:])
	}

	pos, _ := r.Seek(0, io.SeekCurrent)
	if pos != 2 {
		t.Errorf("position after Peek() = %d, want 2", pos)
	}
}

func TestPeekLimitsToSniffWindow(t *testing.T) {
	body := bytes.Repeat([]byte("a"), 4096)
	head, err := documents.Peek(bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(head) != 512 {
		t.Errorf("len(Peek()) = %d, want 512", len(head))
	}
}

func TestRuleCheck(t *testing.T) {
	tests := []struct {
		name string
		rule documents.Rule
		body []byte
		want bool
	}{
		{"pdf only accepts pdf", documents.PDFOnly, pdfBody, true},
		{"pdf only rejects csv", documents.PDFOnly, csvBody, false},
		{"pdf or csv accepts pdf", documents.PDFOrCSV, pdfBody, true},
		{"pdf or csv accepts csv", documents.PDFOrCSV, csvBody, true},
		{"pdf or csv rejects zip", documents.PDFOrCSV, zipBody, false},
		{"zip only accepts zip", documents.ZIPOnly, zipBody, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bytes.NewReader(tt.body)
			got, err := tt.rule.Check(r)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Check() = %v, want %v", got, tt.want)
			}

			rest, _ := io.ReadAll(r)
			if !bytes.Equal(rest, tt.body) {
				t.Error("Check() consumed the stream")
			}
		})
	}
}
