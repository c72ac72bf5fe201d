package documents

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// sniffLen is how much of a stream is inspected when classifying content.
const sniffLen = 512

var (
	pdfSignature  = []byte("%PDF-")
	zipSignatures = [][]byte{
		[]byte("PK\x03\x04"),
		[]byte("PK\x05\x06"), // empty archive
		[]byte("PK\x07\x08"), // spanned archive
	}
)

// IsPDF reports whether head starts with the PDF file signature.
func IsPDF(head []byte) bool {
	return bytes.HasPrefix(head, pdfSignature)
}

// IsZIP reports whether head starts with one of the ZIP local file,
// end-of-central-directory or spanning signatures.
func IsZIP(head []byte) bool {
	for _, sig := range zipSignatures {
		if bytes.HasPrefix(head, sig) {
			return true
		}
	}
	return false
}

// IsCSV reports whether head looks like comma separated text. CSV has no
// signature, so head must be UTF-8 text without binary control bytes that
// parses into at least one record with a consistent number of fields.
func IsCSV(head []byte) bool {
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}

	// A full sniff window may end mid-line or mid-rune; only complete lines
	// are considered.
	if len(head) == sniffLen {
		if i := bytes.LastIndexByte(head, '\n'); i > 0 {
			head = head[:i+1]
		}
	}

	head = bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(head)) == 0 || !utf8.Valid(head) {
		return false
	}

	for _, b := range head {
		if b < 0x20 && b != '\t' && b != '\r' && b != '\n' {
			return false
		}
		if b == 0x7f {
			return false
		}
	}

	r := csv.NewReader(bytes.NewReader(head))
	records := 0
	for {
		_, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return false
		}
		records++
	}

	return records > 0
}

// Peek reads up to the sniff window from r and seeks back to where r was,
// leaving the stream intact for the save that follows.
func Peek(r io.ReadSeeker) ([]byte, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("find stream position: %w", err)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read stream head: %w", err)
	}

	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind stream: %w", err)
	}

	return head[:n], nil
}

// Rule accepts content matching any of its checks. Code is the validation
// error code reported when nothing matches.
type Rule struct {
	Code   string
	Checks []func([]byte) bool
}

var (
	PDFOnly  = Rule{Code: "not_pdf", Checks: []func([]byte) bool{IsPDF}}
	PDFOrCSV = Rule{Code: "not_pdf_or_csv", Checks: []func([]byte) bool{IsPDF, IsCSV}}
	ZIPOnly  = Rule{Code: "not_zip", Checks: []func([]byte) bool{IsZIP}}
)

func (rule Rule) Accepts(head []byte) bool {
	for _, check := range rule.Checks {
		if check(head) {
			return true
		}
	}
	return false
}

// Check peeks at r and reports whether the rule accepts it. The stream
// position is unchanged on return.
func (rule Rule) Check(r io.ReadSeeker) (bool, error) {
	head, err := Peek(r)
	if err != nil {
		return false, err
	}
	return rule.Accepts(head), nil
}
