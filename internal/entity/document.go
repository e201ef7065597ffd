package entity

// Document is one uploaded PDF payload. It lives for a single batch run.
type Document struct {
	Name string
	Data []byte
}
