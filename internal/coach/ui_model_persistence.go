package coach

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const uiStateFileName = "ui_state.json"

type uiModelPersistenceData struct {
	LastFamilyID   string `json:"last_family_id"`
	LastEntryIndex int    `json:"last_entry_index"`
}

type uiModelPersistence struct {
	filePath string // Empty when persistence is disabled
	mu       sync.Mutex
	data     uiModelPersistenceData
	logger   *log.Logger
}

func newUIModelPersistence(stateDir string, logger *log.Logger) *uiModelPersistence {
	p := &uiModelPersistence{logger: logger}
	if stateDir == "" {
		p.logger.Printf("UIModelPersistence: disabled (no state dir)")
		return p
	}
	p.filePath = filepath.Join(stateDir, uiStateFileName)
	p.load()
	return p
}

func (p *uiModelPersistence) getLastSelection() (string, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data.LastFamilyID, p.data.LastEntryIndex
}

func (p *uiModelPersistence) setLastSelection(familyID string, entryIndex int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger.Printf("UIModelPersistence: setLastSelection %q/%d", familyID, entryIndex)
	p.data.LastFamilyID = familyID
	p.data.LastEntryIndex = entryIndex
	p.save()
}

func (p *uiModelPersistence) load() {
	raw, err := os.ReadFile(p.filePath)
	if err != nil {
		p.logger.Printf("UIModelPersistence: load %s (no existing file)", p.filePath)
		return
	}
	var data uiModelPersistenceData
	if err := json.Unmarshal(raw, &data); err != nil {
		p.logger.Printf("UIModelPersistence: load %s failed to parse: %v", p.filePath, err)
		return
	}
	p.data = data
	p.logger.Printf("UIModelPersistence: load %s -> %q/%d", p.filePath, p.data.LastFamilyID, p.data.LastEntryIndex)
}

// save writes the data file. MUST be called with mu held.
func (p *uiModelPersistence) save() {
	if p.filePath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(p.filePath), 0755); err != nil {
		p.logger.Printf("UIModelPersistence: save mkdir failed: %v", err)
		return
	}
	raw, err := json.MarshalIndent(p.data, "", "  ")
	if err != nil {
		p.logger.Printf("UIModelPersistence: save marshal failed: %v", err)
		return
	}
	if err := os.WriteFile(p.filePath, raw, 0644); err != nil {
		p.logger.Printf("UIModelPersistence: save %s failed: %v", p.filePath, err)
		return
	}
	p.logger.Printf("UIModelPersistence: save %s", p.filePath)
}
