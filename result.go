package postimage

import (
	"errors"
	"image"
)

// Response is the payload returned by an ImageGenerator.
// It is either a *FlatResponse or a *CandidateResponse.
type Response interface {
	isResponse()
}

// FlatResponse exposes its parts directly.
type FlatResponse struct {
	Parts []Part
}

// CandidateResponse nests parts under candidate content.
type CandidateResponse struct {
	Candidates []Candidate

	// Usage contains token/billing information, if reported
	Usage *UsageMetadata
}

// Candidate is one answer from the model.
type Candidate struct {
	Parts        []Part
	FinishReason string
}

func (*FlatResponse) isResponse()      {}
func (*CandidateResponse) isResponse() {}

// Part is one piece of response content: ImagePart, InlineDataPart or TextPart.
type Part interface {
	isPart()
}

// ImagePart carries an already decoded image.
type ImagePart struct {
	Image image.Image
}

// InlineDataPart carries embedded bytes. Data may be raw binary or base64 text.
type InlineDataPart struct {
	MIMEType string
	Data     []byte
}

// TextPart carries model text. Thought marks reasoning output.
type TextPart struct {
	Text    string
	Thought bool
}

func (ImagePart) isPart()      {}
func (InlineDataPart) isPart() {}
func (TextPart) isPart()       {}

// UsageMetadata contains usage information for billing and monitoring.
type UsageMetadata struct {
	PromptTokens     int
	CandidatesTokens int
	TotalTokens      int
}

// errUnknownFailure stands in when Failed is handed a nil error.
var errUnknownFailure = errors.New("unknown failure")

// Result is the outcome of GeneratePostImage: either the saved file path or an error.
// Build it with Succeeded or Failed; the two arms are never both populated.
type Result struct {
	path string
	err  error
}

// Succeeded returns a successful Result for path.
func Succeeded(path string) Result {
	return Result{path: path}
}

// Failed returns a failed Result.
func Failed(err error) Result {
	if err == nil {
		err = errUnknownFailure
	}
	return Result{err: err}
}

// OK reports whether the Result is a success.
func (r Result) OK() bool {
	return r.err == nil
}

// Path returns the saved file path and true on success.
func (r Result) Path() (string, bool) {
	if r.err != nil {
		return "", false
	}
	return r.path, true
}

// Err returns the failure, or nil on success.
func (r Result) Err() error {
	return r.err
}
