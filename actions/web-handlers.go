package actions

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"sort"
	"sync"

	om "github.com/cevaris/ordered_map"
	"github.com/gorilla/mux"
	"github.com/relloyd/makedw/config"
	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/helper"
	"github.com/relloyd/makedw/logger"
	"github.com/relloyd/makedw/output"
	"github.com/relloyd/makedw/render"
	tabledefinition "github.com/relloyd/makedw/table-definition"
)

type WebServerResponse uint32

const (
	Okay WebServerResponse = iota + 1
	Error
)

func (w WebServerResponse) MarshalJSON() ([]byte, error) {
	var retval string
	switch w {
	case Okay:
		retval = "ok"
	case Error:
		retval = "error"
	default:
		err := fmt.Errorf("unhandled WebServerResponse value in MarshalJSON() conversion")
		return nil, err
	}
	return json.Marshal(retval)
}

type ResponseSimple struct {
	ServerStatus WebServerResponse `json:"status"`
}

// RequestGenerate is the body of POST /generate.
type RequestGenerate struct {
	Config *config.WarehouseConfig          `json:"config"`
	Tables []tabledefinition.TableDefinition `json:"tables"`
}

type ResponseUnit struct {
	Table     string            `json:"table"`
	Artifacts []output.Artifact `json:"artifacts"`
}

type ResponseGenerate struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	Report  *Report           `json:"report,omitempty"`
	Units   []ResponseUnit    `json:"units,omitempty"`
}

type ResponseRunList struct {
	Status WebServerResponse `json:"status"`
	Runs   []string          `json:"runs"`
}

type ResponseRunReport struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	Report  *Report           `json:"report,omitempty"`
}

// SafeMapReports holds the reports of the most recent runs served since startup.
// Once Limit reports are held, storing another evicts the oldest.
type SafeMapReports struct {
	sync.RWMutex
	Limit    int
	internal *om.OrderedMap
}

func NewSafeMapReports() *SafeMapReports {
	return &SafeMapReports{Limit: constants.WebMaxStoredRuns, internal: om.NewOrderedMap()}
}

func (s *SafeMapReports) Store(r *Report) {
	s.Lock()
	defer s.Unlock()
	s.internal.Set(r.RunID, r)
	for s.Limit > 0 && s.internal.Len() > s.Limit {
		iter := s.internal.IterFunc()
		kv, ok := iter()
		if !ok {
			break
		}
		s.internal.Delete(kv.Key)
	}
}

func (s *SafeMapReports) Load(id string) (*Report, bool) {
	s.RLock()
	defer s.RUnlock()
	v, ok := s.internal.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Report), true
}

// IDs returns the run ids held, oldest first.
func (s *SafeMapReports) IDs() []string {
	s.RLock()
	defer s.RUnlock()
	return helper.OrderedMapKeys(s.internal)
}

func GetHandlerHealth(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerStopServer(log logger.Logger, chanStop chan string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		select {
		case chanStop <- "stop":
			log.Info("Stop signal sent")
		default: // already stopping
		}
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

// GetHandlerGenerate derives and renders the scripts for the table definitions in the request body.
// Nothing is written to disk; the scripts are returned per table.
func GetHandlerGenerate(log logger.Logger, renderer render.Renderer, runs *SafeMapReports) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, constants.WebMaxRequestBytes))
		if err != nil {
			logAndRespond(log, err, w, ResponseGenerate{Status: Error, Message: fmt.Sprintf("error reading request: %v", err)})
			return
		}
		req := RequestGenerate{Config: config.NewWarehouseConfig()}
		if err := json.Unmarshal(b, &req); err != nil {
			logAndRespond(log, err, w, ResponseGenerate{Status: Error, Message: fmt.Sprintf("error unmarshalling JSON: %v", err)})
			return
		}
		if req.Config == nil {
			req.Config = config.NewWarehouseConfig()
		}
		mem := output.NewMemoryWriter()
		p := &Pipeline{
			Log:          log,
			Config:       req.Config,
			Introspector: tabledefinition.NewStaticIntrospector(req.Tables),
			Renderer:     renderer,
			Writer:       mem,
		}
		report, err := p.Run(r.Context())
		runs.Store(report)
		if err != nil {
			logAndRespond(log, err, w, ResponseGenerate{Status: Error, Message: err.Error(), Report: report})
			return
		}
		units := make([]ResponseUnit, 0, len(report.Generated))
		for _, u := range mem.Units() {
			if len(u) > 0 {
				units = append(units, ResponseUnit{Table: u[0].Name, Artifacts: u})
			}
		}
		sort.Slice(units, func(i, j int) bool { return units[i].Table < units[j].Table })
		status, msg := Okay, fmt.Sprintf("%v table(s) generated", len(report.Generated))
		if err := report.Err(); err != nil {
			status, msg = Error, err.Error()
		}
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseGenerate{Status: status, Message: msg, Report: report, Units: units})
	}
}

func GetHandlerRunList(log logger.Logger, runs *SafeMapReports) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseRunList{Status: Okay, Runs: runs.IDs()})
	}
}

func GetHandlerRunReport(log logger.Logger, runs *SafeMapReports) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["runId"]
		report, ok := runs.Load(id)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			log.Info("HTTP request for run ", id, " that doesn't exist.")
			respond(log, w, ResponseRunReport{Status: Error, Message: fmt.Sprintf("run %v does not exist", id)})
			return
		}
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseRunReport{Status: Okay, Report: report})
	}
}

// logAndRespond will log the error, write a http.StatusBadRequest and r to w.
func logAndRespond(log logger.Logger, err error, w http.ResponseWriter, r interface{}) {
	log.Error(err)
	w.WriteHeader(http.StatusBadRequest)
	respond(log, w, r)
}

// respond will marshal i to a string and write it to w.
func respond(log logger.Logger, w http.ResponseWriter, i interface{}) {
	j, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		log.Panic(err)
	}
	_, err = fmt.Fprint(w, string(j))
	if err != nil {
		log.Panic(err)
	}
}
