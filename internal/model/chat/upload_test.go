package chat

import "testing"

func TestUploadAccepted(t *testing.T) {
	cases := []struct {
		name     string
		upload   Upload
		accepted bool
		csv      bool
	}{
		{"plain text", Upload{Filename: "notes.txt", MimeType: MimePlain}, true, false},
		{"json", Upload{Filename: "data.json", MimeType: MimeJSON}, true, false},
		{"csv", Upload{Filename: "data.csv", MimeType: MimeCSV}, true, true},
		{"excel csv", Upload{Filename: "report.csv", MimeType: MimeExcel}, true, true},
		{"excel workbook", Upload{Filename: "report.xls", MimeType: MimeExcel}, false, false},
		{"png", Upload{Filename: "chart.png", MimeType: "image/png"}, false, false},
	}

	for _, tc := range cases {
		if got := tc.upload.Accepted(); got != tc.accepted {
			t.Fatalf("%s: Accepted() = %v, want %v", tc.name, got, tc.accepted)
		}
		if got := tc.upload.IsCSV(); got != tc.csv {
			t.Fatalf("%s: IsCSV() = %v, want %v", tc.name, got, tc.csv)
		}
	}
}
