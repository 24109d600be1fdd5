package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TxCommitter finishes a transaction started by Repository.BeginTx.
type TxCommitter interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type ImageCreateParams struct {
	EventID   int64
	AccountID int64
	BlobKey   string
	MimeType  string
	Size      int64
	Uploaded  time.Time
	Source    *string
}

// Repository is the storage contract for the event aggregate. Single-row
// lookups return the matching ErrNoSuch* sentinel when nothing is found.
// Delete methods report whether a row existed.
type Repository interface {
	BeginTx(ctx context.Context) (Repository, TxCommitter, error)

	// CreateEvent fails with directory.ErrNoSuchAddress when the address
	// does not exist.
	CreateEvent(ctx context.Context, authorID int64, fields EventFields, created time.Time) (*Event, error)
	GetEvent(ctx context.Context, id int64) (*Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	ListCustomerEvents(ctx context.Context, customerID int64) ([]Event, error)
	UpdateEvent(ctx context.Context, id int64, fields EventFields) error
	DeleteEvent(ctx context.Context, id int64) (bool, error)
	// DeleteEventChildren removes editors, tags, sub-events, prices and
	// customer links. Images are released separately.
	DeleteEventChildren(ctx context.Context, eventID int64) error

	ListEditors(ctx context.Context, eventID int64) ([]Editor, error)
	InsertEditor(ctx context.Context, eventID, accountID int64, at time.Time) (*Editor, error)

	ListImages(ctx context.Context, eventID int64) ([]Image, error)
	ListAllImages(ctx context.Context) ([]Image, error)
	GetImage(ctx context.Context, id int64) (*Image, error)
	InsertImage(ctx context.Context, params ImageCreateParams) (*Image, error)
	UpdateImageSource(ctx context.Context, id int64, source *string) error
	DeleteImage(ctx context.Context, id int64) (bool, error)

	ListTags(ctx context.Context, eventID int64) ([]Tag, error)
	// InsertTag returns the existing row if the event already has the tag.
	InsertTag(ctx context.Context, eventID int64, tag string) (*Tag, error)
	DeleteTagByID(ctx context.Context, eventID, id int64) (bool, error)
	DeleteTagByText(ctx context.Context, eventID int64, tag string) (bool, error)
	DeleteTags(ctx context.Context, eventID int64) error

	VocabularyContains(ctx context.Context, tag string) (bool, error)
	ListVocabulary(ctx context.Context) ([]string, error)
	InsertVocabulary(ctx context.Context, tag string) error
	DeleteVocabulary(ctx context.Context, tag string) (bool, error)

	ListSubEvents(ctx context.Context, eventID int64) ([]SubEvent, error)
	GetSubEvent(ctx context.Context, eventID, id int64) (*SubEvent, error)
	InsertSubEvent(ctx context.Context, eventID int64, timestamp time.Time, caption *string) (*SubEvent, error)
	UpdateSubEvent(ctx context.Context, sub SubEvent) error
	DeleteSubEvent(ctx context.Context, eventID, id int64) (bool, error)

	ListPrices(ctx context.Context, eventID int64) ([]Price, error)
	GetPrice(ctx context.Context, id int64) (*Price, error)
	InsertPrice(ctx context.Context, eventID int64, value decimal.Decimal, currency Currency, caption *string) (*Price, error)
	UpdatePrice(ctx context.Context, price Price) error
	DeletePrice(ctx context.Context, id int64) (bool, error)

	ListEventCustomers(ctx context.Context, eventID int64) ([]EventCustomer, error)
	// InsertEventCustomer returns the existing link if there is one.
	InsertEventCustomer(ctx context.Context, eventID, customerID int64) (*EventCustomer, error)
	DeleteEventCustomer(ctx context.Context, eventID, customerID int64) (bool, error)
	DeleteEventCustomers(ctx context.Context, eventID int64) error
	CustomerExists(ctx context.Context, customerID int64) (bool, error)
	CustomerAllowed(ctx context.Context, customerID int64) (bool, error)
}
