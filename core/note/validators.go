package note

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studyroom/core"
)

var (
	dataURITag  = "startswith"
	dataURIText = "{0} must be a data URL"
)

// InitValidators registers the note translations. core.InitValidators must be called first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterCustomTranslation(validate, translator, dataURITag, dataURIText, true)
}

// Validate checks the upload in order: title, file presence, file size (inclusive ceiling).
func (up *Upload) Validate(validate *validator.Validate, maxSize int64) error {
	up.Clean()
	if err := validate.Struct(up); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			return missingTitle()
		}
		return err
	}
	if up.File == nil {
		return core.NewValidationError(ErrNoFileSelected, core.FieldError{Field: "file", Error: MsgNoFileSelected})
	}
	if up.File.Size() > maxSize {
		return fileTooLarge(maxSize)
	}
	return nil
}

func (nn *NewNote) Validate(validate *validator.Validate, translator ut.Translator) error {
	nn.Clean()
	err := validate.Struct(nn)
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}

	var cause error
	flds := make([]core.FieldError, 0, len(vErrs))
	for _, vErr := range vErrs {
		fErr := core.FieldError{Field: vErr.Field(), Error: vErr.Translate(translator)}
		switch vErr.Field() {
		case "title":
			fErr.Error = MsgMissingTitle
			if cause == nil {
				cause = ErrMissingTitle
			}
		default:
			if cause == nil {
				cause = ErrNoFileSelected
			}
		}
		flds = append(flds, fErr)
	}
	return core.NewValidationError(cause, flds...)
}

func missingTitle() error {
	return core.NewValidationError(ErrMissingTitle, core.FieldError{Field: "title", Error: MsgMissingTitle})
}

func fileTooLarge(maxSize int64) error {
	return core.NewValidationError(ErrFileTooLarge, core.FieldError{
		Field: "file",
		Error: fmt.Sprintf("File is too large! Please keep it under %s.", humanize.Bytes(uint64(maxSize))),
	})
}
