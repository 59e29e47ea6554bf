// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package imagefield

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrEmptyPayload      = errors.New("empty base64 payload")
	ErrDecode            = errors.New("invalid image: base64 decoding failed")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrInvalidInputType  = errors.New("invalid input type: expected a file or a base64 string")
)

// DownstreamError carries a rejection from the Validator unchanged.
type DownstreamError struct {
	Err error
}

func (e *DownstreamError) Error() string { return e.Err.Error() }
func (e *DownstreamError) Unwrap() error { return e.Err }

const (
	DefaultTokenLength = 16
	DefaultMaxBytes    = 10 << 20
	DefaultMaxSide     = 8192

	minTokenLength = 8
	maxTokenLength = 32

	dataURIMarker = "base64,"
)

// Formats are the accepted format tags, also used as file extensions.
var Formats = []string{"jpeg", "png", "gif", "bmp", "tiff", "webp"}

// Asset is a decoded image ready to be handed to storage.
type Asset struct {
	Name   string
	Format string
	Data   []byte
}

// ContentType returns the MIME type for the asset's format.
func (a Asset) ContentType() string {
	return "image/" + a.Format
}

// TokenSource returns the random part of a generated file name.
type TokenSource func() (string, error)

// RandomToken returns length lowercase hex characters read from crypto/rand,
// four random bits per character.
func RandomToken(length int) TokenSource {
	length = clampTokenLength(length)
	return func() (string, error) {
		buf := make([]byte, (length+1)/2)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate image token: %w", err)
		}
		return hex.EncodeToString(buf)[:length], nil
	}
}

func clampTokenLength(n int) int {
	return min(max(n, minTokenLength), maxTokenLength)
}

// Validator is the storage-side check run on every decoded asset.
type Validator interface {
	Validate(Asset) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(Asset) error

func (f ValidatorFunc) Validate(a Asset) error { return f(a) }

type Decoder struct {
	token     TokenSource
	validator Validator
	maxBytes  int64
}

type Option func(*Decoder)

// WithTokenSource replaces the random name generator.
func WithTokenSource(ts TokenSource) Option {
	return func(d *Decoder) { d.token = ts }
}

// WithTokenLength sets the number of hex characters in generated names (8-32).
func WithTokenLength(n int) Option {
	return func(d *Decoder) { d.token = RandomToken(n) }
}

func WithValidator(v Validator) Option {
	return func(d *Decoder) { d.validator = v }
}

// WithMaxBytes bounds uploads and, for the default validator, decoded payloads.
func WithMaxBytes(n int64) Option {
	return func(d *Decoder) { d.maxBytes = n }
}

func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		token:    RandomToken(DefaultTokenLength),
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.validator == nil {
		d.validator = ImageValidator{MaxBytes: d.maxBytes, MaxSide: DefaultMaxSide}
	}
	return d
}

// Decode turns a payload into a named, validated asset. Nothing is persisted.
func (d *Decoder) Decode(p Payload) (Asset, error) {
	var data []byte
	var err error

	switch v := p.(type) {
	case TextPayload:
		data, err = decodeText(string(v))
	case BinaryStream:
		data, err = d.readStream(v.Reader)
	case Invalid:
		err = fmt.Errorf("%w (got %s)", ErrInvalidInputType, v.Got)
	default:
		err = ErrInvalidInputType
	}
	if err != nil {
		return Asset{}, err
	}

	format, err := DetectFormat(data)
	if err != nil {
		return Asset{}, err
	}

	token, err := d.token()
	if err != nil {
		return Asset{}, err
	}

	asset := Asset{
		Name:   token + "." + format,
		Format: format,
		Data:   data,
	}
	if err := d.validator.Validate(asset); err != nil {
		return Asset{}, &DownstreamError{Err: err}
	}
	return asset, nil
}

func decodeText(s string) ([]byte, error) {
	if _, payload, found := strings.Cut(s, dataURIMarker); found {
		s = payload
	}
	if s == "" {
		return nil, ErrEmptyPayload
	}
	// StdEncoding silently skips line breaks
	if strings.ContainsAny(s, "\r\n") {
		return nil, fmt.Errorf("%w: line breaks are not allowed", ErrDecode)
	}

	data, err := base64.StdEncoding.Strict().DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return data, nil
}

func (d *Decoder) readStream(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, ErrInvalidInputType
	}

	data, err := io.ReadAll(io.LimitReader(r, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload: %v", ErrDecode, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	if int64(len(data)) > d.maxBytes {
		return nil, &DownstreamError{Err: fmt.Errorf("image exceeds %d bytes", d.maxBytes)}
	}
	return data, nil
}

// DetectFormat sniffs the leading signature and returns one of Formats.
func DetectFormat(data []byte) (string, error) {
	mtype := mimetype.Detect(data)

	format := strings.TrimPrefix(mtype.Extension(), ".")
	if format == "jpg" {
		format = "jpeg"
	}
	if !slices.Contains(Formats, format) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mtype.String())
	}
	return format, nil
}
