package catalogimport

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ignite/software-catalog/internal/datanorm"
	"github.com/ignite/software-catalog/internal/domain"
)

// Decision is the validator's verdict on one row.
type Decision struct {
	Accepted bool
	Error    *ImportError
}

func accept() Decision { return Decision{Accepted: true} }

func reject(rowNum int, msg string) Decision {
	return Decision{Error: &ImportError{Row: rowNum, Message: msg}}
}

// newStructValidator returns a validator that reports fields by their JSON
// name, so messages read "name missing" rather than "Name missing".
func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// rowValidator holds the per-batch validation state. Not safe for
// concurrent use; a batch is processed by one goroutine.
type rowValidator struct {
	validate         *validator.Validate
	rejectDuplicates bool
	// folded name -> stored name, seeded from the store at batch start and
	// extended with every entry created during the batch.
	known map[string]string
}

func newRowValidator(v *validator.Validate, rejectDuplicates bool, existingNames []string) *rowValidator {
	rv := &rowValidator{
		validate:         v,
		rejectDuplicates: rejectDuplicates,
		known:            make(map[string]string, len(existingNames)),
	}
	for _, n := range existingNames {
		rv.remember(n)
	}
	return rv
}

// Validate checks field constraints and, when enabled, name uniqueness.
func (rv *rowValidator) Validate(rowNum int, row datanorm.CatalogRow) Decision {
	if err := rv.validate.Struct(row); err != nil {
		return reject(rowNum, constraintMessage(err))
	}
	if rv.rejectDuplicates {
		if existing, ok := rv.known[domain.FoldName(row.Name)]; ok {
			return reject(rowNum, fmt.Sprintf("entry %q already exists", existing))
		}
	}
	return accept()
}

// remember marks a name as taken for the rest of the batch.
func (rv *rowValidator) remember(name string) {
	key := domain.FoldName(name)
	if key == "" {
		return
	}
	if _, exists := rv.known[key]; !exists {
		rv.known[key] = name
	}
}

func constraintMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " missing"
	case "max":
		return fmt.Sprintf("%s exceeds %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}
