package asset

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Bucket names a logical partition in the object store, one per asset category.
type Bucket string

const (
	BucketVehicleImages  Bucket = "vehicle-images"
	BucketCampaignImages Bucket = "campaign-images"
	BucketDocuments      Bucket = "documents"
)

// Buckets lists every bucket the lifecycle may touch.
func Buckets() []Bucket {
	return []Bucket{BucketVehicleImages, BucketCampaignImages, BucketDocuments}
}

// Valid reports whether b is one of the known buckets.
func (b Bucket) Valid() bool {
	for _, known := range Buckets() {
		if b == known {
			return true
		}
	}
	return false
}

// DefaultMaxSizeMB applies when Options.MaxSizeMB is zero.
const DefaultMaxSizeMB = 10

// Options is the per-call upload policy. It is never persisted.
type Options struct {
	Bucket       Bucket   `validate:"bucket"`
	Folder       string   `validate:"omitempty,max=256"`
	MaxSizeMB    int      `validate:"gte=0"`
	AllowedTypes []string `validate:"dive,mimepattern"`
}

func (o Options) maxSizeMB() int {
	if o.MaxSizeMB == 0 {
		return DefaultMaxSizeMB
	}
	return o.MaxSizeMB
}

func (o Options) objectPath(key string) string {
	folder := strings.Trim(o.Folder, "/")
	if folder == "" {
		return key
	}
	return folder + "/" + key
}

var imageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// VehicleImageOptions is the policy for a vehicle's photo.
func VehicleImageOptions() Options {
	return Options{
		Bucket:       BucketVehicleImages,
		Folder:       "vehicles",
		MaxSizeMB:    5,
		AllowedTypes: append([]string(nil), imageTypes...),
	}
}

// CampaignImageOptions is the policy for a campaign banner.
func CampaignImageOptions() Options {
	return Options{
		Bucket:       BucketCampaignImages,
		Folder:       "campaigns",
		MaxSizeMB:    5,
		AllowedTypes: append([]string(nil), imageTypes...),
	}
}

// CustomerDocumentOptions is the policy for a document filed under a customer.
func CustomerDocumentOptions(customerID string) Options {
	return Options{
		Bucket:       BucketDocuments,
		Folder:       "customer-" + customerID,
		MaxSizeMB:    10,
		AllowedTypes: append([]string{"application/pdf"}, imageTypes...),
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func optionsValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("bucket", func(fl validator.FieldLevel) bool {
			return Bucket(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("mimepattern", func(fl validator.FieldLevel) bool {
			return isMIMEPattern(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Validate checks that the options describe a usable policy.
func (o Options) Validate() error {
	if err := optionsValidator().Struct(o); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}

// isMIMEPattern accepts "major/minor" and "major/*".
func isMIMEPattern(s string) bool {
	major, minor, ok := strings.Cut(s, "/")
	if !ok || major == "" || minor == "" {
		return false
	}
	return !strings.ContainsAny(s, " ;,") && strings.Count(s, "/") == 1
}
