package manifest

import (
	"log"
	"os"
	"sync"

	"gopkg.in/yaml.v2"
)

type ManifestLoader struct {
	ScriptPrompts                    ScriptPromptCollection
	SourceToScriptCategoryCollection SourceCollection
	FormatToChannelCollection        FormatChannelCollection
	Avatars                          AvatarCollection
}

var manifestInstance *ManifestLoader
var once sync.Once

type Prompt struct {
	PromptCategoryKey  string `yaml:"promptCategoryKey"`
	PromptText         string `yaml:"promptText"`
	SystemPromptText   string `yaml:"systemPromptText"`
	DistributionFormat string `yaml:"distributionFormat"`
	Niche              string `yaml:"niche"`
}

type ScriptPromptCollection struct {
	ScriptPrompts []Prompt `yaml:"scriptPrompts"`
}

type SourceCollection struct {
	Sources []struct {
		SourceName       string `yaml:"sourceName"`
		ScriptCategories []struct {
			CategoryKey string `yaml:"categoryKey"`
		} `yaml:"scriptCategories"`
	} `yaml:"sources"`
}

type FormatChannelCollection struct {
	Formats []struct {
		FormatName string `yaml:"formatName"`
		Channels   []struct {
			ChannelName string `yaml:"channelName"`
		} `yaml:"channels"`
	} `yaml:"formats"`
}

type AvatarCollection struct {
	Avatars []struct {
		AvatarKey    string `yaml:"avatarKey"`
		ProviderName string `yaml:"providerName"`
		RemoteID     string `yaml:"remoteId"` // provider-side avatar id.
		VoiceID      string `yaml:"voiceId"`  // provider-side voice id.
		Persona      string `yaml:"persona"`  // fed into the testimonial prompt.
		Language     string `yaml:"language"`
	} `yaml:"avatars"`
}

func GetManifestLoader() *ManifestLoader {
	if manifestInstance != nil {
		return manifestInstance
	}
	once.Do(func() {
		initManifest()
	})
	return manifestInstance
}

func (m *ManifestLoader) GetScriptPromptsFromSource(sourceName string) []Prompt {
	categoryKeysFromSource := map[string]bool{}
	for _, source := range m.SourceToScriptCategoryCollection.Sources {
		if source.SourceName == sourceName {
			for _, category := range source.ScriptCategories {
				categoryKeysFromSource[category.CategoryKey] = true
			}
		}
	}

	resultPrompts := []Prompt{}
	for _, p := range m.ScriptPrompts.ScriptPrompts {
		if categoryKeysFromSource[p.PromptCategoryKey] {
			resultPrompts = append(resultPrompts, p)
		}
	}
	return resultPrompts
}

// GetChannelsForFormat answers which distribution channels accept a format,
// e.g. a TestimonialVideo goes to TikTok and Instagram but not X.
func (m *ManifestLoader) GetChannelsForFormat(formatName string) []string {
	results := []string{}
	for _, f := range m.FormatToChannelCollection.Formats {
		if f.FormatName == formatName {
			for _, c := range f.Channels {
				results = append(results, c.ChannelName)
			}
		}
	}
	return results
}

type AvatarEntry struct {
	AvatarKey    string
	ProviderName string
	RemoteID     string
	VoiceID      string
	Persona      string
	Language     string
}

// GetAvatarsForLanguage returns the avatar roster usable for a language.
func (m *ManifestLoader) GetAvatarsForLanguage(language string) []AvatarEntry {
	results := []AvatarEntry{}
	for _, a := range m.Avatars.Avatars {
		if a.Language == language {
			results = append(results, AvatarEntry{
				AvatarKey:    a.AvatarKey,
				ProviderName: a.ProviderName,
				RemoteID:     a.RemoteID,
				VoiceID:      a.VoiceID,
				Persona:      a.Persona,
				Language:     a.Language,
			})
		}
	}
	return results
}

func initManifest() {

	manifest := ManifestLoader{
		ScriptPrompts:                    getScriptPromptCollection(),
		SourceToScriptCategoryCollection: getSourceToScriptCategoryCollection(),
		FormatToChannelCollection:        getFormatToChannelCollection(),
		Avatars:                          getAvatarCollection(),
	}
	manifestInstance = &manifest
}

func getScriptPromptCollection() ScriptPromptCollection {
	promptFile, err := os.ReadFile("./manifest/script_prompts.yml")
	if err != nil {
		log.Fatalf("failed to load file manifest prompts: %s", err)
	}

	var prompts ScriptPromptCollection
	err = yaml.Unmarshal(promptFile, &prompts)
	if err != nil {
		log.Fatalf("failed to unmarshall manifest prompts: %s", err)
	}
	return prompts
}

func getSourceToScriptCategoryCollection() SourceCollection {
	promptFile, err := os.ReadFile("./manifest/source_to_script_categories.yml")
	if err != nil {
		log.Fatalf("failed to load file manifest sources: %s", err)
	}

	var sources SourceCollection
	err = yaml.Unmarshal(promptFile, &sources)
	if err != nil {
		log.Fatalf("failed to unmarshall manifest sources: %s", err)
	}
	return sources
}

func getFormatToChannelCollection() FormatChannelCollection {
	manifestFile, err := os.ReadFile("./manifest/format_to_channels.yml")
	if err != nil {
		log.Fatalf("failed to load file manifest formats: %s", err)
	}

	var formats FormatChannelCollection
	err = yaml.Unmarshal(manifestFile, &formats)
	if err != nil {
		log.Fatalf("failed to unmarshall manifest formats: %s", err)
	}
	return formats
}

func getAvatarCollection() AvatarCollection {
	manifestFile, err := os.ReadFile("./manifest/avatars.yml")
	if err != nil {
		log.Fatalf("failed to load file manifest avatars: %s", err)
	}

	var avatars AvatarCollection
	err = yaml.Unmarshal(manifestFile, &avatars)
	if err != nil {
		log.Fatalf("failed to unmarshall manifest avatars: %s", err)
	}
	return avatars
}
