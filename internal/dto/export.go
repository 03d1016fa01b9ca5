package dto

// ExportRequest asks for a rendered timetable file.
type ExportRequest struct {
	Group  string `json:"group" binding:"required"`
	Format string `json:"format" binding:"required,oneof=csv pdf"`
}

// ExportResponse carries the signed download link for a rendered file.
type ExportResponse struct {
	ExportID    string `json:"exportId"`
	FileName    string `json:"fileName"`
	Format      string `json:"format"`
	DownloadURL string `json:"downloadUrl"`
}
