package i18n

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/iamwavecut/securebot/internal/infra"
	"github.com/iamwavecut/securebot/resources"
)

// Translations load lazily per language. Get is called both from the
// update loop and from detached goroutines (broadcast reports), so the
// state is guarded.
var state = struct {
	mu            sync.RWMutex
	translations  map[string]map[string]string
	loaded        map[string]bool
	resourcesPath string
}{
	translations:  make(map[string]map[string]string),
	loaded:        make(map[string]bool),
	resourcesPath: infra.GetResourcesPath("i18n"),
}

func load(lang string) {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.loaded[lang] {
		return
	}

	raw, err := resources.FS.ReadFile(state.resourcesPath + "/" + fmt.Sprintf("%s.yml", lang))
	if err != nil {
		log.WithError(err).Errorln("cant load i18n")
		return
	}
	translations := make(map[string]string)
	if err := yaml.Unmarshal(raw, &translations); err != nil {
		log.WithError(err).Errorln("cant unmarshal i18n")
		return
	}
	state.translations[lang] = translations
	state.loaded[lang] = true
}

func Get(key, lang string) string {
	if "en" == lang {
		return key
	}

	state.mu.RLock()
	loaded := state.loaded[lang]
	res, ok := state.translations[lang][key]
	state.mu.RUnlock()

	if !loaded {
		load(lang)
		state.mu.RLock()
		res, ok = state.translations[lang][key]
		state.mu.RUnlock()
	}

	if ok {
		return res
	}
	log.Tracef(`no translation for key "%s"`, key)
	return key
}
