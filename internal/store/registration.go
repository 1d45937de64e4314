package store

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/reinodovo/custom-bots/internal/database"
)

var (
	ErrAlreadyRegistered   = errors.New("bot already registered")
	ErrNotRegistered       = errors.New("bot not registered")
	ErrInvalidRegistration = errors.New("invalid registration")
)

// InvalidRegistrationError lists every field that failed validation, one
// message per field.
type InvalidRegistrationError struct {
	Problems []string
}

func (e *InvalidRegistrationError) Error() string {
	return strings.Join(e.Problems, " ")
}

func (e *InvalidRegistrationError) Is(target error) bool {
	return target == ErrInvalidRegistration
}

const (
	DefaultPrefix   = "!"
	DefaultStatus   = "online"
	DefaultActivity = "playing"
	// AllCogs asks for every cog the runner knows about.
	AllCogs = "~"
)

var (
	Statuses   = []string{"online", "idle", "dnd", "invisible"}
	Activities = []string{"playing", "streaming", "listening", "watching", "competing"}
)

// Registration is the configuration of one bot.
type Registration struct {
	ID       int64    `bson:"id" validate:"gt=0"`
	Name     string   `bson:"name" validate:"required"`
	Prefix   string   `bson:"prefix" validate:"required"`
	Status   string   `bson:"status" validate:"oneof=online idle dnd invisible"`
	Activity string   `bson:"activity" validate:"oneof=playing streaming listening watching competing"`
	Media    string   `bson:"media"`
	OwnerID  int64    `bson:"owner_id" validate:"gte=0"`
	Cogs     []string `bson:"cogs" validate:"min=1"`
	GuildID  int64    `bson:"guild_id" validate:"gte=0"`
	Token    string   `bson:"token"`

	SuggestionChannel string `bson:"suggestion_channel,omitempty"`
	ModlogChannel     string `bson:"modlog_channel,omitempty"`
}

var validate = newValidator()

// newValidator reports fields by their stored name, e.g. "owner_id".
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("bson"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

func (r Registration) String() string {
	return fmt.Sprintf("%v (%v)", r.Name, r.ID)
}

// WithDefaults fills optional fields the way the registrar does.
func (r Registration) WithDefaults() Registration {
	if r.Prefix == "" {
		r.Prefix = DefaultPrefix
	}
	r.Status = strings.ToLower(r.Status)
	if r.Status == "" {
		r.Status = DefaultStatus
	}
	r.Activity = strings.ToLower(r.Activity)
	if r.Activity == "" {
		r.Activity = DefaultActivity
	}
	if len(r.Cogs) == 0 {
		r.Cogs = []string{AllCogs}
	}
	return r
}

func (r Registration) Validate() error {
	err := validate.Struct(r)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, problem(fe))
	}
	return &InvalidRegistrationError{Problems: problems}
}

func problem(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "gt", "min":
		return fmt.Sprintf("%v is required!", fe.Field())
	case "gte":
		return fmt.Sprintf("%v must not be negative!", fe.Field())
	case "oneof":
		options := strings.Fields(fe.Param())
		return fmt.Sprintf("%v must be one of the following: '%v'!", fe.Field(), strings.Join(options, "', '"))
	default:
		return fmt.Sprintf("%v is invalid!", fe.Field())
	}
}

// AddRegistration stores a new bot. Registering the same ID twice fails with
// ErrAlreadyRegistered.
func (s *Store) AddRegistration(r Registration) (Registration, error) {
	r = r.WithDefaults()
	if err := r.Validate(); err != nil {
		return r, err
	}
	err := s.db.InsertObject(registrationsBucket, registrationKey(r.ID), r)
	if errors.Is(err, database.ErrDuplicateKey) {
		return r, errors.Wrapf(ErrAlreadyRegistered, "id %v", r.ID)
	}
	return r, err
}

func (s *Store) GetRegistration(id int64) (Registration, error) {
	r := Registration{}
	err := s.db.GetObject(registrationsBucket, registrationKey(id), &r)
	if errors.Is(err, database.ErrKeyNotFound) {
		return r, errors.Wrapf(ErrNotRegistered, "id %v", id)
	}
	return r, err
}

// ListRegistrations returns every registered bot ordered by ID.
func (s *Store) ListRegistrations() ([]Registration, error) {
	keys, err := s.db.Keys(registrationsBucket, "")
	if err != nil {
		return nil, err
	}
	registrations := make([]Registration, 0, len(keys))
	for _, key := range keys {
		r := Registration{}
		err := s.db.GetObject(registrationsBucket, key, &r)
		if errors.Is(err, database.ErrKeyNotFound) {
			continue
		} else if err != nil {
			return nil, errors.Wrapf(err, "load registration %v", key)
		}
		registrations = append(registrations, r)
	}
	sortRegistrations(registrations)
	return registrations, nil
}

// SaveRegistration replaces an existing registration.
func (s *Store) SaveRegistration(r Registration) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return s.db.SaveObject(registrationsBucket, registrationKey(r.ID), r)
}

func (s *Store) DeleteRegistration(id int64) error {
	err := s.db.DeleteObject(registrationsBucket, registrationKey(id))
	if errors.Is(err, database.ErrKeyNotFound) {
		return errors.Wrapf(ErrNotRegistered, "id %v", id)
	}
	return err
}
