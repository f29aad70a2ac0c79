package main

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"log"
	"net/http"
	"strconv"
	"sync"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/lnlab/lnremote/manipulator"
	"github.com/lnlab/lnremote/sm10"
)

type api struct {
	http.Handler
	m   *manipulator.Manipulator
	sse *sse.Server
	up  websocket.Upgrader

	mu   sync.Mutex
	subs map[chan manipulator.PositionUpdate]struct{}
}

func newAPI(m *manipulator.Manipulator, p *manipulator.Poller) *api {
	r := mux.NewRouter()

	a := &api{
		Handler: r,
		m:       m,
		sse: sse.NewServer(&sse.Options{
			Logger: log.New(ioutil.Discard, "", 0),
		}),
		up:   websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		subs: make(map[chan manipulator.PositionUpdate]struct{}),
	}

	r.HandleFunc("/api/axes/{axis}/position", a.position).Methods("GET")
	r.HandleFunc("/api/axes/{axis}/step", a.step).Methods("POST")
	r.HandleFunc("/api/axes/{axis}/approach", a.approach).Methods("POST")
	r.HandleFunc("/api/axes/{axis}/home", a.home).Methods("POST")
	r.HandleFunc("/api/axes/{axis}/home/return", a.returnHome).Methods("POST")
	r.HandleFunc("/api/axes/{axis}/stop", a.stop).Methods("POST")
	r.HandleFunc("/api/axes/{axis}/power", a.power).Methods("POST")
	r.HandleFunc("/api/positions", a.positions).Methods("GET")
	r.HandleFunc("/api/stop", a.stopAll).Methods("POST")
	r.HandleFunc("/api/slots/{slot}/store", a.storeSlot).Methods("POST")
	r.HandleFunc("/api/slots/{slot}/recall", a.recallSlot).Methods("POST")
	r.HandleFunc("/api/unit", a.unit).Methods("GET", "PUT")
	r.HandleFunc("/ws/positions", a.streamWS)
	r.PathPrefix("/events/").Handler(a.sse)

	go func() {
		for u := range p.Updates() {
			data, err := json.Marshal(u)
			if err != nil {
				log.Printf("ERROR: marshal json: %+v", err)
				continue
			}
			a.sse.SendMessage("/events/positions", sse.SimpleMessage(string(data)))
			a.mu.Lock()
			for ch := range a.subs {
				select {
				case ch <- u:
				default:
				}
			}
			a.mu.Unlock()
		}
	}()

	return a
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: write json: %+v", err)
	}
}

func fail(w http.ResponseWriter, err error) {
	var arg *sm10.ArgumentError
	if errors.As(err, &arg) || errors.Is(err, manipulator.ErrNotHomed) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Printf("ERROR: %+v", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func pathInt(req *http.Request, name string) (int, error) {
	return strconv.Atoi(mux.Vars(req)[name])
}

func (a *api) position(w http.ResponseWriter, req *http.Request) {
	axis, err := pathInt(req, "axis")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pos, err := a.m.ReadPosition(axis)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{"axis": axis, "position": pos})
}

func (a *api) positions(w http.ResponseWriter, req *http.Request) {
	axes := []int{1, 2, 3}
	pos, err := a.m.ReadPositions(axes)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{"axes": axes, "positions": pos})
}

func (a *api) step(w http.ResponseWriter, req *http.Request) {
	axis, err := pathInt(req, "axis")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var body struct {
		Steps      int `json:"steps"`
		Resolution int `json:"resolution"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.Resolution == 0 {
		body.Resolution = 50
	}
	if err := a.m.StepAxis(axis, body.Steps, body.Resolution); err != nil {
		fail(w, err)
	}
}

func (a *api) approach(w http.ResponseWriter, req *http.Request) {
	axis, err := pathInt(req, "axis")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var body struct {
		Position float32 `json:"position"`
		Relative bool    `json:"relative"`
		Fast     bool    `json:"fast"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	mode := sm10.ApproachAbsolute
	if body.Relative {
		mode = sm10.ApproachRelative
	}
	speed := sm10.SpeedSlow
	if body.Fast {
		speed = sm10.SpeedFast
	}
	if err := a.m.ApproachPosition(axis, mode, speed, body.Position); err != nil {
		fail(w, err)
	}
}

func (a *api) home(w http.ResponseWriter, req *http.Request) {
	axis, err := pathInt(req, "axis")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := a.m.MoveHome(axis); err != nil {
		fail(w, err)
	}
}

func (a *api) returnHome(w http.ResponseWriter, req *http.Request) {
	axis, err := pathInt(req, "axis")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := a.m.ReturnAxisHome(axis); err != nil {
		fail(w, err)
	}
}

func (a *api) stop(w http.ResponseWriter, req *http.Request) {
	axis, err := pathInt(req, "axis")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := a.m.StopAxis(axis); err != nil {
		fail(w, err)
	}
}

func (a *api) stopAll(w http.ResponseWriter, req *http.Request) {
	if err := a.m.StopAxes([]int{1, 2, 3, 4}); err != nil {
		fail(w, err)
	}
}

func (a *api) power(w http.ResponseWriter, req *http.Request) {
	axis, err := pathInt(req, "axis")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var body struct {
		On bool `json:"on"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := a.m.SwitchAxisPower(axis, body.On); err != nil {
		fail(w, err)
	}
}

func (a *api) storeSlot(w http.ResponseWriter, req *http.Request) {
	slot, err := pathInt(req, "slot")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := a.m.StoreAxesPosition([]int{1, 2, 3}, slot); err != nil {
		fail(w, err)
	}
}

func (a *api) recallSlot(w http.ResponseWriter, req *http.Request) {
	slot, err := pathInt(req, "slot")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := a.m.RecallAxesPosition([]int{1, 2, 3}, slot, 10); err != nil {
		fail(w, err)
	}
}

func (a *api) unit(w http.ResponseWriter, req *http.Request) {
	if req.Method == "GET" {
		writeJSON(w, map[string]int{"unit": a.m.Unit()})
		return
	}
	var body struct {
		Unit int `json:"unit"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := a.m.SelectUnit(body.Unit); err != nil {
		fail(w, err)
	}
}

// streamWS relays the poller's position samples over a websocket until
// the client goes away. Every client shares the one poll loop.
func (a *api) streamWS(w http.ResponseWriter, req *http.Request) {
	conn, err := a.up.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("ERROR: websocket upgrade: %+v", err)
		return
	}
	defer conn.Close()

	ch := make(chan manipulator.PositionUpdate, 1)
	a.mu.Lock()
	a.subs[ch] = struct{}{}
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		delete(a.subs, ch)
		a.mu.Unlock()
	}()

	for u := range ch {
		if err := conn.WriteJSON(u); err != nil {
			return
		}
	}
}
