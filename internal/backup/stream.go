package backup

import (
	"archive/zip"
	"bufio"
	"bytes"
	"errors"
	"io"
	"iter"

	"encoding/json/v2"
)

var errMemberMissing = errors.New("member not found in archive")

// lineWriter streams entities as JSONL into one archive member.
type lineWriter struct {
	w     io.Writer
	count int
}

func newLineWriter(zw *zip.Writer, path string) (*lineWriter, error) {
	w, err := zw.Create(path)
	if err != nil {
		return nil, err
	}
	return &lineWriter{w: w}, nil
}

func (w *lineWriter) write(entity any) error {
	if err := json.MarshalWrite(w.w, entity); err != nil {
		return err
	}
	if _, err := w.w.Write([]byte{'\n'}); err != nil {
		return err
	}
	w.count++
	return nil
}

// openMember finds and opens a member of the archive.
func openMember(zr *zip.ReadCloser, path string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == path {
			return f.Open()
		}
	}
	return nil, errMemberMissing
}

// readLines iterates the JSONL entities of one archive member. A missing
// member yields nothing, so older backups without a section restore cleanly.
func readLines[T any](zr *zip.ReadCloser, path string) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		rc, err := openMember(zr, path)
		if err != nil {
			return
		}
		defer rc.Close()

		scanner := bufio.NewScanner(rc)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var entity T
			if err := json.UnmarshalRead(bytes.NewReader(line), &entity); err != nil {
				var zero T
				if !yield(zero, err) {
					return
				}
				continue
			}
			if !yield(entity, nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}
