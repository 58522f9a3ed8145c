package bridge

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// Normalize converts a resolver result into a Resource. It never panics; a
// panic while reading the result is reported as a failure.
func Normalize(result any, kind Kind, uri string) (res Resource) {
	defer func() {
		if r := recover(); r != nil {
			res = Failure(fmt.Sprint(r))
		}
	}()

	switch v := result.(type) {
	case *http.Response:
		return fromHTTP(v, kind, uri)
	case *resty.Response:
		return fromResty(v, kind, uri)
	case Blob:
		return fromBlob(v, kind, uri)
	case *Blob:
		if v == nil {
			break
		}
		return fromBlob(*v, kind, uri)
	case string:
		return Success(InferMime(kind, uri), []byte(v))
	case []byte:
		return Success(InferMime(kind, uri), v)
	case Resource:
		if !v.OK {
			return Failure(v.Error)
		}
		if v.MIME == "" {
			v.MIME = InferMime(kind, uri)
		}
		return Success(v.MIME, v.Body)
	}
	return Failure(ReasonUnsupported)
}

func fromHTTP(resp *http.Response, kind Kind, uri string) Resource {
	if resp == nil {
		return Failure(ReasonUnsupported)
	}
	if resp.Body != nil {
		defer resp.Body.Close()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Failure(fmt.Sprintf("HTTP %d", resp.StatusCode))
	}
	var body []byte
	if resp.Body != nil {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return Failure(err.Error())
		}
		body = data
	}
	return Success(headerMime(resp.Header.Get("Content-Type"), kind, uri), body)
}

func fromResty(resp *resty.Response, kind Kind, uri string) Resource {
	if resp == nil {
		return Failure(ReasonUnsupported)
	}
	if !resp.IsSuccess() {
		return Failure(fmt.Sprintf("HTTP %d", resp.StatusCode()))
	}
	return Success(headerMime(resp.Header().Get("Content-Type"), kind, uri), resp.Body())
}

func fromBlob(b Blob, kind Kind, uri string) Resource {
	mime := b.Type
	if mime == "" {
		mime = InferMime(kind, uri)
	}
	return Success(mime, b.Data)
}

func headerMime(header string, kind Kind, uri string) string {
	if header != "" {
		return header
	}
	return InferMime(kind, uri)
}
