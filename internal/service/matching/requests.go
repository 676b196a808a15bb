package matching

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"google.golang.org/protobuf/types/known/structpb"

	svcErr "github.com/oggyb/mockmatch/internal/errors"
)

type userRequest struct {
	UserID uint64 `json:"user_id" validate:"required"`
}

type pairRequest struct {
	UserID   uint64 `json:"user_id" validate:"required"`
	TargetID uint64 `json:"target_id" validate:"required"`
}

type listRequest struct {
	UserID    uint64 `json:"user_id" validate:"required"`
	PageToken string `json:"page_token"`
	Limit     int    `json:"limit" validate:"gte=0,lte=100"`
}

type feedbackRequest struct {
	UserID    uint64 `json:"user_id" validate:"required"`
	PartnerID uint64 `json:"partner_id" validate:"required"`
	Passed    bool   `json:"passed"`
	Content   string `json:"content" validate:"max=2000"`
}

type grantRequest struct {
	UserID uint64 `json:"user_id" validate:"required"`
	Amount int    `json:"amount" validate:"required,gt=0"`
}

var validate = newValidator()

// newValidator reports fields by their wire names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

// decode copies the request struct into out and validates it. Ids may be
// sent as numbers or decimal strings; unknown fields are rejected.
func decode(in *structpb.Struct, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return svcErr.Internal(err.Error())
	}
	if err := dec.Decode(in.AsMap()); err != nil {
		return svcErr.InvalidArgument(fmt.Sprintf("malformed request: %v", err))
	}

	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return svcErr.InvalidArgument(describe(verrs))
		}
		return svcErr.InvalidArgument(err.Error())
	}
	return nil
}

func describe(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// toStruct renders v through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, svcErr.Internal(fmt.Sprintf("encode response: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, svcErr.Internal(fmt.Sprintf("encode response: %v", err))
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, svcErr.Internal(fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}
