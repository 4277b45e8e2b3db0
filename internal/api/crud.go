package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jasim8799/api/internal/utils"
)

// maxBodyBytes bounds request bodies; catalog documents are small.
const maxBodyBytes = 1 << 20

// CRUD is implemented by handlers of a resource with the standard five routes.
// List (GET), Get (GET by ID), Create (POST), Update (PUT), and Delete (DELETE).
type CRUD[C any, U any] interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request, id bson.ObjectID)
	Create(w http.ResponseWriter, r *http.Request, data *C)
	Update(w http.ResponseWriter, r *http.Request, id bson.ObjectID, data *U)
	Delete(w http.ResponseWriter, r *http.Request, id bson.ObjectID)
}

// AddCRUDRoutes adds the standard CRUD routes to r.
// Reads are open to every caller that passed the router's gates; writes also go through writeGuard.
func AddCRUDRoutes[C any, U any](r chi.Router, handler CRUD[C, U], writeGuard func(http.Handler) http.Handler) {
	r.Get("/", handler.List)
	r.Get("/{id}", WithID(handler.Get))

	r.Group(func(r chi.Router) {
		r.Use(writeGuard)
		r.Post("/", WithBody(handler.Create))
		r.Put("/{id}", WithIDAndBody(handler.Update))
		r.Delete("/{id}", WithID(handler.Delete))
	})
}

type HandlerFunc1[T any] func(w http.ResponseWriter, r *http.Request, data T)
type HandlerFunc2[T1 any, T2 any] func(w http.ResponseWriter, r *http.Request, data1 T1, data2 T2)

// idFromParam parses the {id} URL parameter. On failure it has already responded
// and returns the nil ObjectID.
func idFromParam(w http.ResponseWriter, r *http.Request) bson.ObjectID {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "ID is required")
		return bson.NilObjectID
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil || oid.IsZero() {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid ID format")
		return bson.NilObjectID
	}
	return oid
}

// decodeBody reads a JSON body into a new T. On failure it has already responded.
func decodeBody[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var data T
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&data); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	return &data, true
}

func WithID(handler HandlerFunc1[bson.ObjectID]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := idFromParam(w, r)
		if id.IsZero() {
			return
		}
		handler(w, r, id)
	}
}

func WithBody[T any](handler HandlerFunc1[*T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, ok := decodeBody[T](w, r)
		if !ok {
			return
		}
		handler(w, r, data)
	}
}

func WithIDAndBody[T any](handler HandlerFunc2[bson.ObjectID, *T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := idFromParam(w, r)
		if id.IsZero() {
			return
		}
		data, ok := decodeBody[T](w, r)
		if !ok {
			return
		}
		handler(w, r, id, data)
	}
}
