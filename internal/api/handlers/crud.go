package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// resource serves the five plain CRUD endpoints for one kind. In is the
// decoded request body and Out is what the service returns.
type resource[In any, Out any] struct {
	name   string
	create func(ctx context.Context, in In) (Out, error)
	get    func(ctx context.Context, id int64) (Out, error)
	list   func(ctx context.Context, r *http.Request) ([]Out, error)
	update func(ctx context.Context, id int64, in In) (Out, error)
	remove func(ctx context.Context, id int64) error
}

func (res resource[In, Out]) Create(w http.ResponseWriter, r *http.Request) {
	var in In
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, res.name+".Create", err)
		return
	}
	out, err := res.create(r.Context(), in)
	if err != nil {
		writeError(w, r, res.name+".Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (res resource[In, Out]) List(w http.ResponseWriter, r *http.Request) {
	out, err := res.list(r.Context(), r)
	if err != nil {
		writeError(w, r, res.name+".List", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (res resource[In, Out]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, res.name+".Get", err)
		return
	}
	out, err := res.get(r.Context(), id)
	if err != nil {
		writeError(w, r, res.name+".Get", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (res resource[In, Out]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, res.name+".Update", err)
		return
	}
	var in In
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, res.name+".Update", err)
		return
	}
	out, err := res.update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, res.name+".Update", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (res resource[In, Out]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, r, res.name+".Delete", err)
		return
	}
	if err := res.remove(r.Context(), id); err != nil {
		writeError(w, r, res.name+".Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Routes mounts the resource on a chi sub-router.
func (res resource[In, Out]) Routes(r chi.Router) {
	r.Get("/", res.List)
	r.Post("/", res.Create)
	r.Get("/{id}", res.Get)
	r.Put("/{id}", res.Update)
	r.Delete("/{id}", res.Delete)
}

