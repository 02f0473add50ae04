package llm

import "testing"

func clearKeys(t *testing.T) {
	t.Helper()
	for _, kv := range keyVars {
		t.Setenv(kv.env, "")
	}
}

func TestDiscover(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		provider string
	}{
		{"none", nil, ""},
		{"gemini key", map[string]string{"GEMINI_API_KEY": "g"}, ProviderGemini},
		{"web build key", map[string]string{"API_KEY": "g"}, ProviderGemini},
		{"openai", map[string]string{"OPENAI_API_KEY": "o"}, ProviderOpenAI},
		{"anthropic", map[string]string{"ANTHROPIC_API_KEY": "a"}, ProviderAnthropic},
		{"gemini wins", map[string]string{"ANTHROPIC_API_KEY": "a", "GEMINI_API_KEY": "g"}, ProviderGemini},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearKeys(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			found := cfg.Discover()
			if found != (tt.provider != "") || cfg.Provider != tt.provider {
				t.Fatalf("Discover() = %v, provider %q; want %q", found, cfg.Provider, tt.provider)
			}
			if found {
				if err := cfg.Validate(); err != nil {
					t.Errorf("discovered config invalid: %v", err)
				}
			}
		})
	}
}

func TestDiscoverKeepsExplicitProvider(t *testing.T) {
	clearKeys(t)
	t.Setenv("GEMINI_API_KEY", "g")
	cfg := Config{Provider: ProviderOpenAI}
	if !cfg.Discover() || cfg.Provider != ProviderOpenAI || cfg.Gemini.APIKey != "" {
		t.Fatalf("explicit provider overridden: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		cfg     Config
		wantErr bool
	}{
		{Config{Provider: ProviderMock}, false},
		{Config{Provider: ProviderGemini, Gemini: Endpoint{APIKey: "k"}}, false},
		{Config{Provider: ProviderGemini}, true},
		{Config{Provider: ProviderOpenAI, Gemini: Endpoint{APIKey: "k"}}, true},
		{Config{Provider: "openrouter"}, true},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%q) = %v, wantErr %v", tt.cfg.Provider, err, tt.wantErr)
		}
	}
}

func TestEndpointModelFor(t *testing.T) {
	ep := Endpoint{Model: "gemini-2.5-flash"}
	if ep.ModelFor(PurposeArtifact) != "gemini-2.5-flash" {
		t.Error("artifact model should default to the worksheet model")
	}
	ep.ArtifactModel = "gemini-2.5-flash-lite"
	if ep.ModelFor(PurposeArtifact) != "gemini-2.5-flash-lite" || ep.ModelFor(PurposeWorksheet) != "gemini-2.5-flash" {
		t.Errorf("models = %s / %s", ep.ModelFor(PurposeWorksheet), ep.ModelFor(PurposeArtifact))
	}
}
