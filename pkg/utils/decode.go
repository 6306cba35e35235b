package utils

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
)

const maxBodyBytes = 1 << 20

// FormBinder is implemented by request types that can be filled from an
// url-encoded form post.
type FormBinder interface {
	BindForm(values url.Values) error
}

var ErrUnsupportedBody = errors.New("unsupported request body")

// DecodeRequest fills dst from a JSON body, or from form values when the
// request is a form post and dst implements FormBinder.
func DecodeRequest(r *http.Request, dst any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		binder, ok := dst.(FormBinder)
		if !ok {
			return ErrUnsupportedBody
		}
		var err error
		if mediaType == "multipart/form-data" {
			err = r.ParseMultipartForm(maxBodyBytes)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return err
		}
		return binder.BindForm(r.PostForm)
	default:
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		return dec.Decode(dst)
	}
}
