// Package parse decodes notebook documents into the model.
package parse

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/phobologic/ipyprev/internal/logger"
	"github.com/phobologic/ipyprev/internal/model"
)

//go:embed schema/notebook.json
var schemaFS embed.FS

// ErrInvalidNotebook is matched by every *Error.
var ErrInvalidNotebook = errors.New("invalid notebook")

// Error reports a document that is not valid JSON or lacks a structurally
// required field.
type Error struct {
	// Offset is the byte offset of a JSON syntax error, or -1.
	Offset int64
	// Problems lists schema violations as "field: description".
	Problems []string
	Err      error
}

func (e *Error) Error() string {
	switch {
	case len(e.Problems) > 0:
		return fmt.Sprintf("%s: %s", ErrInvalidNotebook, strings.Join(e.Problems, "; "))
	case e.Offset >= 0:
		return fmt.Sprintf("%s: at byte %d: %v", ErrInvalidNotebook, e.Offset, e.Err)
	default:
		return fmt.Sprintf("%s: %v", ErrInvalidNotebook, e.Err)
	}
}

// Is makes errors.Is(err, ErrInvalidNotebook) hold for every *Error.
func (e *Error) Is(target error) bool {
	return target == ErrInvalidNotebook
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	schemaOnce   sync.Once
	schemaLoaded *gojsonschema.Schema
	schemaErr    error
)

func notebookSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		data, err := schemaFS.ReadFile("schema/notebook.json")
		if err != nil {
			schemaErr = fmt.Errorf("reading schema: %w", err)
			return
		}
		schemaLoaded, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compiling schema: %w", schemaErr)
		}
	})
	return schemaLoaded, schemaErr
}

// File reads and parses the notebook at path. Read failures are returned
// wrapped; malformed documents yield *Error.
func File(path string) (*model.Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Notebook(data)
}

// Notebook parses a notebook document. Unknown fields are ignored and
// per-cell metadata is kept as raw JSON.
func Notebook(data []byte) (*model.Notebook, error) {
	doc, err := decodeGeneric(data)
	if err != nil {
		return nil, err
	}

	schema, err := notebookSchema()
	if err != nil {
		return nil, err
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, &Error{Offset: -1, Err: err}
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, verr := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
		}
		return nil, &Error{Offset: -1, Problems: problems}
	}

	var nb model.Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, &Error{Offset: -1, Err: err}
	}

	logger.Debug("parsed notebook", "cells", len(nb.Cells), "nbformat", fmt.Sprintf("%d.%d", nb.NBFormat, nb.NBFormatMinor))
	return &nb, nil
}

// decodeGeneric decodes data into untyped values, rejecting trailing data.
func decodeGeneric(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, syntaxError(err, dec.InputOffset())
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &Error{Offset: dec.InputOffset(), Err: errors.New("trailing data after document")}
	}
	return doc, nil
}

func syntaxError(err error, fallback int64) *Error {
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return &Error{Offset: se.Offset, Err: err}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &Error{Offset: fallback, Err: io.ErrUnexpectedEOF}
	}
	return &Error{Offset: -1, Err: err}
}
