package middleware

import "net/http"

// hookWriter runs before once, right before the response header is sent.
type hookWriter struct {
	http.ResponseWriter
	before func(http.ResponseWriter)
	wrote  bool
}

func (w *hookWriter) fire() {
	if w.wrote {
		return
	}
	w.wrote = true
	if w.before != nil {
		w.before(w.ResponseWriter)
	}
}

func (w *hookWriter) WriteHeader(status int) {
	w.fire()
	w.ResponseWriter.WriteHeader(status)
}

func (w *hookWriter) Write(b []byte) (int, error) {
	w.fire()
	return w.ResponseWriter.Write(b)
}

func (w *hookWriter) Flush() {
	w.fire()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *hookWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
