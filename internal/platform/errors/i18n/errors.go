package i18n

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/louisbranch/backgammon/internal/platform/errors"
)

func asDomain(err error, target **apperrors.Error) bool {
	return errors.As(err, target) && *target != nil
}

// Status converts err into a gRPC status error carrying the localized
// message for locale. Context errors keep their gRPC code; other non-domain
// errors are reported as internal.
func Status(err error, locale string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	var domainErr *apperrors.Error
	if !asDomain(err, &domainErr) {
		domainErr = apperrors.Wrap(apperrors.CodeUnknown, err.Error(), err)
	}
	cat := GetCatalog(locale)
	return domainErr.ToGRPCStatus(cat.Locale(), cat.FormatError(domainErr))
}

// Describe returns the gRPC code and the user-facing message for err.
func Describe(err error, locale string) (codes.Code, string) {
	if err == nil {
		return codes.OK, ""
	}
	st := status.Convert(Status(err, locale))
	for _, detail := range st.Details() {
		if localized, ok := detail.(*errdetails.LocalizedMessage); ok {
			return st.Code(), localized.GetMessage()
		}
	}
	return st.Code(), st.Message()
}
