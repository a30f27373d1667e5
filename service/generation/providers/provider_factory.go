package providers

import (
	"errors"

	tables "github.com/viralos-core/v2/dal/tables/v1"
)

// Per-provider request ceiling within one rate bucket minute.
const DEFAULT_MAX_REQUESTS_PER_MIN = 30

// GetProviderChain returns providers for a media type in fallback-priority order.
func GetProviderChain(mediaType tables.MediaType) ([]MediaProvider, error) {
	switch mediaType {
	case tables.MEDIA_TEXT:
		return []MediaProvider{OpenAIProvider{}, AnthropicProvider{}}, nil
	case tables.MEDIA_AVATAR:
		return []MediaProvider{HeyGenProvider{}, DIDProvider{}, SynthesiaProvider{}}, nil
	case tables.MEDIA_BROLL:
		return []MediaProvider{RunwayProvider{}}, nil
	case tables.MEDIA_VOICE:
		return []MediaProvider{ElevenLabsProvider{}}, nil
	}
	return nil, errors.New("no matching media-type-to-provider found")
}

func GetProviderByName(providerName string) (MediaProvider, error) {
	switch providerName {
	case PROVIDER_OPENAI:
		return OpenAIProvider{}, nil
	case PROVIDER_ANTHROPIC:
		return AnthropicProvider{}, nil
	case PROVIDER_HEYGEN:
		return HeyGenProvider{}, nil
	case PROVIDER_DID:
		return DIDProvider{}, nil
	case PROVIDER_SYNTHESIA:
		return SynthesiaProvider{}, nil
	case PROVIDER_RUNWAY:
		return RunwayProvider{}, nil
	case PROVIDER_ELEVENLABS:
		return ElevenLabsProvider{}, nil
	}
	return nil, errors.New("no matching provider for name " + providerName)
}
