package models

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message for the applicant.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}
