package chat

import "strings"

// Accepted data file types.
const (
	MimePlain = "text/plain"
	MimeJSON  = "application/json"
	MimeCSV   = "text/csv"
	MimeExcel = "application/vnd.ms-excel"
)

// Upload is a data file waiting to be sent with the next message.
type Upload struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Data     []byte `json:"-"`
}

// IsCSV reports whether the file should be treated as CSV. Browsers on
// Windows report .csv files as the generic Excel type.
func (u Upload) IsCSV() bool {
	if u.MimeType == MimeCSV {
		return true
	}
	return u.MimeType == MimeExcel && strings.HasSuffix(strings.ToLower(u.Filename), ".csv")
}

// Accepted reports whether the file type is allowed for analysis.
func (u Upload) Accepted() bool {
	switch u.MimeType {
	case MimePlain, MimeJSON, MimeCSV:
		return true
	}
	return u.IsCSV()
}
