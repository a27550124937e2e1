package common

import (
	"errors"
	"regexp"

	"github.com/ptavares/socialspaces/params"
)

var (
	ErrUsernameEmpty      = errors.New(`the "username" field cannot be empty`)
	ErrUsernameInvalid    = errors.New(`the "username" field must start with a letter and contain only letters and numbers, at most 30 characters`)
	ErrPasswordTooShort   = errors.New(`the "password" field cannot be empty or shorter than 8 characters`)
	ErrPasswordWeak       = errors.New("the password must contain at least one number and one special character")
	ErrPermissionsInvalid = errors.New("the permission flags are not in the expected format")
	ErrNameInvalid        = errors.New(`the "name" field must start with a letter and contain only letters and numbers, at most 30 characters`)
	ErrOwnerInvalid       = errors.New(`the "owner" field must start with a letter and contain only letters and numbers, at most 30 characters`)
	ErrNameTooLong        = errors.New(`the "name" field must have at most 255 characters`)
	ErrOwnerTooLong       = errors.New(`the "owner" field must have at most 255 characters`)
	ErrMessageTooLong     = errors.New(`the "message" field must have at most 255 characters`)
	ErrMessageInvalid     = errors.New(`the "message" field contains invalid characters`)
)

var (
	nameRegexp        = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9 ]{1,29}$`)
	passwordRegexp    = regexp.MustCompile(`^[a-zA-Z0-9!@#$%^&*(),.?":{}|<>]{8,255}$`)
	hasDigitRegexp    = regexp.MustCompile(`[0-9]`)
	hasSpecialRegexp  = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
	permissionsRegexp = regexp.MustCompile(`^[arwd]+$`)
	messageRegexp     = regexp.MustCompile(`^[a-zA-Z0-9 .,?!áéíóúàèìòùãõçÁÉÍÓÚÀÈÌÒÙÃÕÇ-]+$`)
)

func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameEmpty
	}
	if !nameRegexp.MatchString(username) {
		return ErrUsernameInvalid
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < params.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if !passwordRegexp.MatchString(password) || !hasDigitRegexp.MatchString(password) || !hasSpecialRegexp.MatchString(password) {
		return ErrPasswordWeak
	}
	return nil
}

func ValidatePermissions(permissions string) error {
	if permissions == "" || len(permissions) > params.MaxPermissionLength {
		return ErrPermissionsInvalid
	}
	if !permissionsRegexp.MatchString(permissions) {
		return ErrPermissionsInvalid
	}
	return nil
}

// ValidateSpaceName checks the length and character constraints on a space
// name before escaping.
func ValidateSpaceName(name string) error {
	if name == "" || len(name) > params.MaxSpaceNameLength {
		return ErrNameTooLong
	}
	if !nameRegexp.MatchString(name) {
		return ErrNameInvalid
	}
	return nil
}

func ValidateSpaceOwner(owner string) error {
	if owner == "" || len(owner) > params.MaxSpaceNameLength {
		return ErrOwnerTooLong
	}
	if !nameRegexp.MatchString(owner) {
		return ErrOwnerInvalid
	}
	return nil
}

// ValidateMessage allows letters, numbers, spaces and safe punctuation with
// no HTML metacharacters.
func ValidateMessage(message string) error {
	if message == "" || len(message) > params.MaxMessageLength {
		return ErrMessageTooLong
	}
	if !messageRegexp.MatchString(message) {
		return ErrMessageInvalid
	}
	return nil
}
