package domain

import (
	"errors"
	"time"
)

// KnowledgeEntry is a curated question/answer pair from the bundled knowledge base.
type KnowledgeEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Product is a storefront listing found by a catalog lookup. It is never persisted.
type Product struct {
	Name        string
	Category    string
	ProductURL  string
	Description string
	ImageURL    string
}

// Intent is the coarse purpose of a customer question.
type Intent string

const (
	IntentProductInquiry Intent = "PRODUCT_INQUIRY"
	IntentSupportRequest Intent = "SUPPORT_REQUEST"
	IntentGeneralInquiry Intent = "GENERAL_INQUIRY"
)

// Interaction is one answered question as stored in the interaction log.
type Interaction struct {
	ID        string
	Question  string
	Answer    string
	CreatedAt time.Time
}

// ErrInteractionNotFound is returned by interaction stores when no record has the given id.
var ErrInteractionNotFound = errors.New("interaction not found")
