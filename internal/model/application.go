package model

import "time"

// MailStatus is the outcome of the notification email sent for an application.
type MailStatus string

const (
	MailSent    MailStatus = "sent"
	MailSkipped MailStatus = "skipped"
	MailFailed  MailStatus = "failed"
)

// StoredFile describes an uploaded file after it was written to upload storage.
type StoredFile struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimetype"`
	Size     int64  `json:"size"`
	Path     string `json:"path"`
}

// Application is one submission of the public application form.
// Applications are append-only and never modified after they are written.
type Application struct {
	ID         string       `json:"id"`
	CreatedAt  time.Time    `json:"createdAt"`
	Name       string       `json:"name"`
	Kana       string       `json:"kana"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone"`
	Age        string       `json:"age"`
	Height     string       `json:"height"`
	Size       string       `json:"size"`
	Category   string       `json:"category"`
	Message    string       `json:"message"`
	Files      []StoredFile `json:"files"`
	MailStatus MailStatus   `json:"mailStatus"`
}

func (a Application) RecordID() string   { return a.ID }
func (a Application) Created() time.Time { return a.CreatedAt }
