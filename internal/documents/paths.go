package documents

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	CategoryAgreements     = "agreements"
	CategoryCommunications = "communications"

	timestampLayout = "2006-01-02-150405"

	maxDownloadNameLen = 50
)

var (
	nonSlugChars   = regexp.MustCompile(`[^\w\s-]`)
	slugSeparators = regexp.MustCompile(`[-\s]+`)
)

// DocumentPath is the storage key for a supplier document of a framework.
func DocumentPath(frameworkSlug string, supplierID int, category, documentName string) string {
	return fmt.Sprintf("%s/%s/%d/%s", frameworkSlug, category, supplierID, documentName)
}

// TimestampedDocumentPath inserts the UTC time before the extension of
// documentName, so re-uploads never overwrite earlier objects.
func TimestampedDocumentPath(frameworkSlug string, supplierID int, category, documentName string, now time.Time) string {
	ext := path.Ext(documentName)
	base := strings.TrimSuffix(documentName, ext)
	name := fmt.Sprintf("%s-%s%s", base, now.UTC().Format(timestampLayout), ext)
	return DocumentPath(frameworkSlug, supplierID, category, name)
}

// DocumentName returns the final element of a storage key.
func DocumentName(documentPath string) string {
	if i := strings.LastIndexByte(documentPath, '/'); i >= 0 {
		return documentPath[i+1:]
	}
	return documentPath
}

// Extension returns the extension of a storage key without its leading dot.
func Extension(documentPath string) string {
	return strings.TrimPrefix(path.Ext(documentPath), ".")
}

// DownloadFileName is the file name offered to browsers downloading a
// supplier document, e.g. "acme-ltd-123-countersigned-framework-agreement.pdf".
func DownloadFileName(supplierID int, documentName, supplierName string) string {
	slug := Slugify(supplierName)
	if len(slug) > maxDownloadNameLen {
		slug = strings.Trim(slug[:maxDownloadNameLen], "-")
	}
	parts := []string{strconv.Itoa(supplierID), documentName}
	if slug != "" {
		parts = append([]string{slug}, parts...)
	}
	return strings.Join(parts, "-")
}

func Slugify(s string) string {
	s = nonSlugChars.ReplaceAllString(s, "")
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Trim(slugSeparators.ReplaceAllString(s, "-"), "-")
}

// CommunicationsPrefix is the storage prefix for framework communications of
// the given kind, e.g. "updates/clarifications".
func CommunicationsPrefix(frameworkSlug, kind string) string {
	return fmt.Sprintf("%s/%s/%s", frameworkSlug, CategoryCommunications, kind)
}

// CommunicationPath is the storage key for an uploaded communication. Only
// the base name of the client supplied file name is kept.
func CommunicationPath(prefix, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, `\`, "/"))
	return prefix + "/" + name
}

// RewriteHost moves a signed URL onto the assets host so downloads are
// served from the public domain. The path and signature query are kept.
func RewriteHost(signedURL, assetsURL string) (string, error) {
	if assetsURL == "" {
		return signedURL, nil
	}

	u, err := url.Parse(signedURL)
	if err != nil {
		return "", fmt.Errorf("parse signed url: %w", err)
	}

	base, err := url.Parse(assetsURL)
	if err != nil {
		return "", fmt.Errorf("parse assets url: %w", err)
	}

	u.Scheme = base.Scheme
	u.Host = base.Host
	return u.String(), nil
}
