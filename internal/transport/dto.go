package transport

import (
	"time"

	"github.com/cagmc/jwtauth/internal/models"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// IsPersistent defaults to true when omitted.
	IsPersistent *bool  `json:"is_persistent,omitempty"`
	Mode         string `json:"mode,omitempty"`
}

func (r LoginRequest) Persistent() bool {
	return r.IsPersistent == nil || *r.IsPersistent
}

type LoginResponse struct {
	Token          string     `json:"token"`
	Expires        time.Time  `json:"expires"`
	RefreshToken   *string    `json:"refresh_token"`
	RefreshExpires *time.Time `json:"refresh_expires"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshResponse struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type MeResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type MagicalPropertyDTO struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type MagicalObjectRequest struct {
	Name        string               `json:"name"`
	Description *string              `json:"description"`
	Elemental   models.ElementalType `json:"elemental"`
	Discovered  time.Time            `json:"discovered"`
	Properties  []MagicalPropertyDTO `json:"properties"`
}

func (r MagicalObjectRequest) Model() *models.MagicalObject {
	obj := &models.MagicalObject{
		Name:        r.Name,
		Description: r.Description,
		Elemental:   r.Elemental,
		Discovered:  r.Discovered,
		Properties:  make([]models.MagicalProperty, 0, len(r.Properties)),
	}
	for _, p := range r.Properties {
		obj.Properties = append(obj.Properties, models.MagicalProperty{Name: p.Name, Value: p.Value})
	}
	return obj
}

type MagicalObjectItem struct {
	ID         uint                 `json:"id"`
	Name       string               `json:"name"`
	Elemental  models.ElementalType `json:"elemental"`
	Discovered time.Time            `json:"discovered"`
}

type MagicalObjectView struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Description *string              `json:"description"`
	Elemental   models.ElementalType `json:"elemental"`
	Discovered  time.Time            `json:"discovered"`
	Properties  []MagicalPropertyDTO `json:"properties"`
}

type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func NewMagicalObjectItems(objs []models.MagicalObject) ListResponse[MagicalObjectItem] {
	items := make([]MagicalObjectItem, 0, len(objs))
	for _, o := range objs {
		items = append(items, MagicalObjectItem{ID: o.ID, Name: o.Name, Elemental: o.Elemental, Discovered: o.Discovered})
	}
	return ListResponse[MagicalObjectItem]{Items: items, Count: len(items)}
}

func NewMagicalObjectView(o *models.MagicalObject) MagicalObjectView {
	v := MagicalObjectView{
		ID:          o.ID,
		Name:        o.Name,
		Description: o.Description,
		Elemental:   o.Elemental,
		Discovered:  o.Discovered,
		Properties:  make([]MagicalPropertyDTO, 0, len(o.Properties)),
	}
	for _, p := range o.Properties {
		v.Properties = append(v.Properties, MagicalPropertyDTO{Name: p.Name, Value: p.Value})
	}
	return v
}
