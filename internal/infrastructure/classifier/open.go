package classifier

import (
	"context"
	"fmt"

	"github.com/tastybyte/orderbot/internal/domain"
	"github.com/tastybyte/orderbot/internal/infrastructure/logging"
)

// Supported providers
const (
	ProviderNone   = "none"
	ProviderGemini = "gemini"
)

// Open builds the classifier named by provider. For ProviderNone it returns a
// nil classifier, which leaves the parser on its rules alone.
func Open(ctx context.Context, provider, apiKey, model string, ratePerSec float64, logger logging.Logger) (domain.ZeroShotClassifier, func() error, error) {
	switch provider {
	case ProviderNone, "":
		return nil, func() error { return nil }, nil
	case ProviderGemini:
		c, err := NewGemini(ctx, apiKey, model, ratePerSec, logger)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown classifier provider %q", provider)
	}
}
