// Package validate holds the form field predicates shared by the API and the CLI.
// Every predicate is total: it returns false instead of failing.
package validate

import (
	"mime/multipart"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

const bytesPerMB = 1024 * 1024

var (
	emailPattern     = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)
	studentIDPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{6}$`)
	phonePattern     = regexp.MustCompile(`^(0|\+84)[0-9]{9}$`)
)

var imageContentTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

// Schemes that are only meaningful with a host.
var hostSchemes = []string{"http", "https", "ws", "wss", "ftp"}

// File is an uploaded file as seen by the validators.
type File interface {
	ContentType() string
	Size() int64
}

type fileHeader struct {
	fh *multipart.FileHeader
}

func (f fileHeader) ContentType() string {
	return f.fh.Header.Get("Content-Type")
}

func (f fileHeader) Size() int64 {
	return f.fh.Size
}

func FromFileHeader(fh *multipart.FileHeader) File {
	return fileHeader{fh: fh}
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidStudentID accepts two uppercase letters followed by six digits, e.g. SE123456.
func IsValidStudentID(studentID string) bool {
	return studentIDPattern.MatchString(studentID)
}

// IsValidPhone accepts Vietnamese numbers in local (0xxxxxxxxx) or international
// (+84xxxxxxxxx) form.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func IsRequired(value string) bool {
	return trimmedLen(value) > 0
}

// MinLength is false for a negative bound.
func MinLength(value string, min int) bool {
	if min < 0 {
		return false
	}

	return trimmedLen(value) >= min
}

// MaxLength is true for a negative bound.
func MaxLength(value string, max int) bool {
	if max < 0 {
		return true
	}

	return trimmedLen(value) <= max
}

func IsValidURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	if u.Scheme == "" {
		return false
	}

	if slices.Contains(hostSchemes, strings.ToLower(u.Scheme)) && u.Host == "" {
		return false
	}

	if port := u.Port(); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n > 65535 {
			return false
		}
	}

	return true
}

func IsValidImageFile(file File) bool {
	return slices.Contains(imageContentTypes, file.ContentType())
}

func IsValidFileSize(file File, maxSizeInMB float64) bool {
	if maxSizeInMB < 0 {
		return false
	}

	return float64(file.Size()) <= maxSizeInMB*bytesPerMB
}

func trimmedLen(value string) int {
	return utf8.RuneCountInString(strings.TrimSpace(value))
}
