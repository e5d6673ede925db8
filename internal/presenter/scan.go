package presenter

import (
	"net/url"
	"strings"
	"sync"
)

// MemberCode is the payload encoded in the user's own QR code.
const MemberCode = "pennybank://me"

const memberScheme = "pennybank"

// CodeKind classifies a scanned payload.
type CodeKind string

const (
	CodeKindMember CodeKind = "member"
	CodeKindURL    CodeKind = "url"
	CodeKindText   CodeKind = "text"
)

// User-facing scan errors.
const (
	MessageNoCode       = "No QR code was found in the image."
	MessageDecodeFailed = "QR code recognition failed, please try again."
)

// ScannedCode is an accepted payload.
type ScannedCode struct {
	Raw  string   `json:"raw"`
	Kind CodeKind `json:"kind"`
}

// ScanState is the display state of the scan screen.
type ScanState struct {
	IsScanningEnabled bool         `json:"is_scanning_enabled"`
	ScannedCode       *ScannedCode `json:"scanned_code,omitempty"`
	ErrorMessage      string       `json:"error_message,omitempty"`
}

// ScanSession accepts one scanned code at a time: after a code is accepted,
// further codes are ignored until Dismiss.
type ScanSession struct {
	mu      sync.Mutex
	enabled bool
	code    *ScannedCode
	message string
}

// NewScanSession returns a session ready to scan.
func NewScanSession() *ScanSession {
	return &ScanSession{enabled: true}
}

// ClassifyCode tells member links, web links and plain text apart.
func ClassifyCode(raw string) CodeKind {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return CodeKindText
	}
	switch strings.ToLower(u.Scheme) {
	case memberScheme:
		return CodeKindMember
	case "http", "https":
		if u.Host != "" {
			return CodeKindURL
		}
	}
	return CodeKindText
}

// HandleScannedCode stores code and pauses scanning. It returns false when
// scanning is paused or the code is blank.
func (s *ScanSession) HandleScannedCode(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || strings.TrimSpace(code) == "" {
		return false
	}
	s.enabled = false
	s.code = &ScannedCode{Raw: code, Kind: ClassifyCode(code)}
	s.message = ""
	return true
}

// Dismiss clears the accepted code and resumes scanning.
func (s *ScanSession) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.code = nil
	s.enabled = true
}

// ReportNoCode records that a picked image held no QR code.
func (s *ScanSession) ReportNoCode() {
	s.setMessage(MessageNoCode)
}

// ReportDecodeFailure records that decoding a picked image failed.
func (s *ScanSession) ReportDecodeFailure() {
	s.setMessage(MessageDecodeFailed)
}

// ClearError removes the current error message.
func (s *ScanSession) ClearError() {
	s.setMessage("")
}

func (s *ScanSession) setMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = msg
}

// CurrentDisplayState returns a copy of the scan state.
func (s *ScanSession) CurrentDisplayState() ScanState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := ScanState{IsScanningEnabled: s.enabled, ErrorMessage: s.message}
	if s.code != nil {
		c := *s.code
		state.ScannedCode = &c
	}
	return state
}
