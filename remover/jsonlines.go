package remover

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
)

// JSON-lines event stream on stderr, for wrapping this tool in something
// that wants structured output. One line per event, off by default.

type Payload interface {
	GetType() string
}

type message struct {
	Type    string  `json:"type"`
	Payload Payload `json:"payload"`
}

var jsonEnabled = false
var jsonLock sync.Mutex

func EnableJSON() {
	jsonLock.Lock()
	defer jsonLock.Unlock()

	jsonEnabled = true
}

func Emit(p Payload) {
	jsonLock.Lock()
	defer jsonLock.Unlock()

	if !jsonEnabled {
		return
	}

	m := &message{
		Type:    p.GetType(),
		Payload: p,
	}

	bs, err := json.Marshal(m)
	if err != nil {
		log.Printf("Could not send JSON object: %+v", err)
		return
	}

	fmt.Fprintf(os.Stderr, "%s\n", string(bs))
}

//-------------------------------

type Resolved struct {
	Path     string `json:"path"`
	BundleID string `json:"bundleId"`
	AppStore bool   `json:"appStore"`
}

func (p Resolved) GetType() string { return "resolved" }

//-------------------------------

type SweepItem struct {
	Path     string `json:"path"`
	Elevated bool   `json:"elevated"`
	DryRun   bool   `json:"dryRun"`
}

func (p SweepItem) GetType() string { return "sweep-item" }

//-------------------------------

type DefaultsCleared struct {
	BundleID string `json:"bundleId"`
}

func (p DefaultsCleared) GetType() string { return "defaults-cleared" }

//-------------------------------

type NeedsSudo struct{}

func (p NeedsSudo) GetType() string { return "needs-sudo" }

//-------------------------------

type Done struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	RemovedCount int    `json:"removedCount"`
}

func (p Done) GetType() string { return "done" }
