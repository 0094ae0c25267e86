package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/taskit/backend/core"
)

const uploadsFormField = "files"

// intParam parses a numeric path parameter. A malformed id is treated
// as a missing resource, not a client syntax error.
func intParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id < 1 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// formUploads collects the multipart files attached to the request. The
// returned closer releases the underlying readers and must be called
// once the services are done with them. A request without a multipart
// body yields no uploads and no error.
func formUploads(ctx echo.Context) ([]core.FileUpload, func(), error) {
	noop := func() {}

	form, err := ctx.MultipartForm()
	if err != nil {
		return nil, noop, nil
	}
	headers := form.File[uploadsFormField]
	if len(headers) == 0 {
		return nil, noop, nil
	}

	uploads := make([]core.FileUpload, 0, len(headers))
	closers := make([]func() error, 0, len(headers))
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	for _, hdr := range headers {
		f, err := hdr.Open()
		if err != nil {
			closeAll()
			return nil, noop, errors.Wrap(err, "opening uploaded file")
		}
		closers = append(closers, f.Close)
		uploads = append(uploads, core.FileUpload{
			Name:        hdr.Filename,
			ContentType: hdr.Header.Get("Content-Type"),
			Size:        hdr.Size,
			Content:     f,
		})
	}
	return uploads, closeAll, nil
}
