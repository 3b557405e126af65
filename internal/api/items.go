package api

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/zvidmar/inventura/internal/db"
	"github.com/zvidmar/inventura/internal/model"
	"github.com/zvidmar/inventura/internal/store"
)

// ItemsHandler handles item CRUD endpoints.
type ItemsHandler struct {
	Handle     *db.Handle
	Policy     Policy
	UploadsDir string
}

type createItemRequest struct {
	Name        *string  `json:"name"`
	Location    *string  `json:"location"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Price       *float64 `json:"price"`
}

type updateItemRequest struct {
	Name            *string  `json:"name"`
	Location        *string  `json:"location"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price"`
	Sold            *bool    `json:"sold"`
	PaymentReceived *bool    `json:"paymentReceived"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	var items []model.Item
	err := h.Handle.View(func(sdb *sql.DB) error {
		var err error
		items, err = store.ListItems(r.Context(), sdb)
		return err
	})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	w.Header().Set("Cache-Control", "no-store")
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items. The body is either JSON or a multipart
// form; a multipart form may carry the item photo in an "image" part.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	var imageURL string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		parsed, url, errMsg := h.parseMultipartCreate(w, r)
		if errMsg != "" {
			jsonError(w, http.StatusBadRequest, errMsg)
			return
		}
		req = parsed
		imageURL = url
	} else {
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		imageURL = req.ImageURL
	}

	if req.Name == nil {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}
	if req.Location == nil {
		jsonError(w, http.StatusBadRequest, "location required")
		return
	}
	if msg := h.Policy.checkText("name", *req.Name); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := h.Policy.checkText("location", *req.Location); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Price != nil {
		if msg := h.Policy.checkPrice(*req.Price); msg != "" {
			jsonError(w, http.StatusBadRequest, msg)
			return
		}
	}

	var item *model.Item
	err := h.Handle.View(func(sdb *sql.DB) error {
		var err error
		item, err = store.CreateItem(r.Context(), sdb, *req.Name, *req.Location, req.Description, imageURL, req.Price)
		return err
	})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	jsonResponse(w, http.StatusCreated, item)
}

// parseMultipartCreate extracts item fields (and an optional image upload)
// from a multipart form. It returns the parsed request, the stored image
// URL, and an error message suitable for a 400 response.
func (h *ItemsHandler) parseMultipartCreate(w http.ResponseWriter, r *http.Request) (createItemRequest, string, string) {
	var req createItemRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return req, "", "invalid multipart form or file too large"
	}

	form := r.MultipartForm.Value
	if v, ok := formValue(form, "name"); ok {
		req.Name = &v
	}
	if v, ok := formValue(form, "location"); ok {
		req.Location = &v
	}
	if v, ok := formValue(form, "description"); ok {
		req.Description = v
	}
	if v, ok := formValue(form, "price"); ok && v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, "", "invalid price"
		}
		req.Price = &price
	}

	imageURL := ""
	if v, ok := formValue(form, "imageUrl"); ok {
		imageURL = v
	}

	file, _, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		url, saveErr := saveUpload(file, h.UploadsDir)
		if saveErr != nil {
			return req, "", saveErr.Error()
		}
		imageURL = url
	} else if err != http.ErrMissingFile {
		return req, "", "invalid image upload"
	}

	return req, imageURL, ""
}

func formValue(form map[string][]string, key string) (string, bool) {
	values, ok := form[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Update handles PATCH /api/items/{id}: a partial update of the mutable
// fields, 404 if the id is unknown.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != nil {
		if msg := h.Policy.checkText("name", *req.Name); msg != "" {
			jsonError(w, http.StatusBadRequest, msg)
			return
		}
	}
	if req.Location != nil {
		if msg := h.Policy.checkText("location", *req.Location); msg != "" {
			jsonError(w, http.StatusBadRequest, msg)
			return
		}
	}
	if req.Price != nil {
		if msg := h.Policy.checkPrice(*req.Price); msg != "" {
			jsonError(w, http.StatusBadRequest, msg)
			return
		}
	}

	var item *model.Item
	err := h.Handle.View(func(sdb *sql.DB) error {
		var err error
		item, err = store.UpdateItemFields(r.Context(), sdb, id, store.ItemUpdate{
			Name:            req.Name,
			Location:        req.Location,
			Description:     req.Description,
			Price:           req.Price,
			Sold:            req.Sold,
			PaymentReceived: req.PaymentReceived,
		})
		return err
	})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// ToggleSold handles PUT /api/items/{id}/sold.
func (h *ItemsHandler) ToggleSold(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, store.ToggleSold)
}

// TogglePayment handles PUT /api/items/{id}/payment.
func (h *ItemsHandler) TogglePayment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, store.TogglePayment)
}

func (h *ItemsHandler) toggle(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, sdb *sql.DB, id string) (*model.Item, error)) {
	id := r.PathValue("id")

	var item *model.Item
	err := h.Handle.View(func(sdb *sql.DB) error {
		var err error
		item, err = fn(r.Context(), sdb, id)
		return err
	})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items?id={id}: a permanent delete, 404 if the
// id is unknown (including an id that was already deleted).
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, "item id required")
		return
	}

	var deleted bool
	err := h.Handle.View(func(sdb *sql.DB) error {
		var err error
		deleted, err = store.DeleteItem(r.Context(), sdb, id)
		return err
	})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if !deleted {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}
