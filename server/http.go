// Package server exposes the pokemon collection and battles over HTTP (JSON, SSE and
// websocket) and the interactive menu over SSH.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/text/language"

	"pokemon-battle/battle"
	"pokemon-battle/data"
	"pokemon-battle/game"
	"pokemon-battle/i18n"
	"pokemon-battle/parser"
)

//go:embed templates/*.html
var templatesFS embed.FS

func parseTemplates() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/*.html"))
}

var templates = parseTemplates()

type Options struct {
	// Lang is the default log language when a request does not pick one.
	Lang string
	// StreamDelay paces SSE and websocket events so spectators can follow along.
	StreamDelay time.Duration
	// Battle options applied to every battle, such as rules.
	Battle []battle.Option
}

type Server struct {
	manager  *data.Manager
	opts     Options
	upgrader websocket.Upgrader
}

func New(manager *data.Manager, opts Options) *Server {
	return &Server{
		manager: manager,
		opts:    opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/pokemon", s.handleList)
	mux.HandleFunc("POST /api/pokemon", s.handleCreate)
	mux.HandleFunc("GET /api/pokemon/{name}", s.handleGet)
	mux.HandleFunc("PUT /api/pokemon/{name}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/pokemon/{name}", s.handleDelete)
	mux.HandleFunc("POST /api/battles", s.handleBattle)
	mux.HandleFunc("GET /battle/stream", s.handleStream)
	mux.HandleFunc("GET /battle/ws", s.handleWebsocket)
	return mux
}

// ListenAndServe runs the HTTP server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Servidor iniciado en http://localhost%s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view := struct {
		Lang     string
		Pokemons []game.Pokemon
	}{
		Lang:     s.lang(r).String(),
		Pokemons: s.manager.List(),
	}
	if err := templates.ExecuteTemplate(w, "index.html", view); err != nil {
		log.Printf("error al renderizar la plantilla: %v", err)
		http.Error(w, "Error al renderizar la plantilla", http.StatusInternalServerError)
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.List())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.manager.Get(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var p game.Pokemon
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "JSON inválido: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.manager.Add(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.manager.Get(p.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type patchRequest struct {
	Number    *int               `json:"pokedex_number"`
	Type1     *string            `json:"type_1"`
	Type2     *string            `json:"type_2"`
	HP        *int               `json:"hp"`
	Attack    *int               `json:"attack"`
	Defense   *int               `json:"defense"`
	SpAttack  *int               `json:"sp_attack"`
	SpDefense *int               `json:"sp_defense"`
	Speed     *int               `json:"speed"`
	Against   map[string]float64 `json:"against"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido: "+err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := s.manager.Update(r.Context(), r.PathValue("name"), data.Patch(req))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Delete(r.Context(), r.PathValue("name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type battleRequest struct {
	First  string `json:"first"`
	Second string `json:"second"`
	Seed   *int64 `json:"seed,omitempty"`
	Lang   string `json:"lang,omitempty"`
}

type battleResponse struct {
	ID      string         `json:"id"`
	Seed    int64          `json:"seed"`
	Winner  string         `json:"winner"`
	Loser   string         `json:"loser"`
	First   string         `json:"first"`
	Turns   int            `json:"turns"`
	FinalHP map[string]int `json:"final_hp"`
	Log     []string       `json:"log"`
}

func (s *Server) handleBattle(w http.ResponseWriter, r *http.Request) {
	var req battleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "JSON inválido: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Lang == "" {
		req.Lang = s.lang(r).String()
	}
	first, second, err := s.pair(req.First, req.Second)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := battle.Run(&first, &second, s.battleOptions(req.Lang, req.Seed)...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, battleResponse{
		ID:     res.ID,
		Seed:   res.Seed,
		Winner: res.Winner.Name,
		Loser:  res.Loser.Name,
		First:  res.Combatants[res.FirstSide].Name(),
		Turns:  res.Turns,
		FinalHP: map[string]int{
			battle.SideOne.String(): res.Combatants[battle.SideOne].HP,
			battle.SideTwo.String(): res.Combatants[battle.SideTwo].HP,
		},
		Log: res.Log,
	})
}

// handleStream runs a battle and streams the narrated log as server-sent events,
// followed by a text summary after every turn.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	log.Printf("Received stream request from %s", r.RemoteAddr)

	bt, lang, err := s.newBattle(r)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming no soportado", http.StatusInternalServerError)
		return
	}

	narrator := battle.NewNarrator(lang)
	state := game.NewBattleState()
	parser.ProcessLine(state, parser.BattleHeader(bt.ID))

	for ev := range bt.Events() {
		for _, line := range parser.Encode(ev) {
			parser.ProcessLine(state, line)
		}
		fmt.Fprintf(w, "data: <p class='logline'>%s</p>\n\n", template.HTMLEscapeString(narrator.Describe(ev)))
		if ev.Kind == battle.EventAttack || ev.Kind == battle.EventWin {
			summary := parser.RenderBattleState(state, lang)
			fmt.Fprintf(w, "data: <pre class='battle-summary'>%s</pre>\n\n", strings.ReplaceAll(template.HTMLEscapeString(summary), "\n", "&#10;"))
		}
		flusher.Flush()
		if !s.pause(r) {
			log.Println("El cliente se ha desconectado.")
			return
		}
	}
	if err := bt.Err(); err != nil {
		fmt.Fprintf(w, "data: <p class='error'>%s</p>\n\n", template.HTMLEscapeString(err.Error()))
	}
	fmt.Fprintf(w, "event: end\ndata: %s\n\n", bt.ID)
	flusher.Flush()
	log.Printf("Batalla %s transmitida, cerrando conexión SSE.", bt.ID)
}

// handleWebsocket streams the battle as protocol lines, one per text message.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	bt, _, err := s.newBattle(r)
	if err != nil {
		writeError(w, err)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("error al actualizar a websocket: %v", err)
		return
	}
	defer conn.Close()

	send := func(line string) bool {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			log.Printf("error al enviar por websocket: %v", err)
			return false
		}
		return true
	}

	if !send(parser.BattleHeader(bt.ID)) {
		return
	}
	for ev := range bt.Events() {
		for _, line := range parser.Encode(ev) {
			if !send(line) {
				return
			}
		}
		if !s.pause(r) {
			return
		}
	}
	if err := bt.Err(); err != nil {
		send("|error|" + err.Error())
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "fin"))
}

func (s *Server) newBattle(r *http.Request) (*battle.Battle, string, error) {
	q := r.URL.Query()
	lang := q.Get("lang")
	if lang == "" {
		lang = s.lang(r).String()
	}
	var seed *int64
	if raw := q.Get("seed"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, "", fmt.Errorf("%w: seed %q", errBadRequest, raw)
		}
		seed = &v
	}
	first, second, err := s.pair(q.Get("first"), q.Get("second"))
	if err != nil {
		return nil, "", err
	}
	bt, err := battle.New(&first, &second, s.battleOptions(lang, seed)...)
	if err != nil {
		return nil, "", err
	}
	return bt, lang, nil
}

func (s *Server) pair(first, second string) (game.Pokemon, game.Pokemon, error) {
	if strings.TrimSpace(first) == "" || strings.TrimSpace(second) == "" {
		return game.Pokemon{}, game.Pokemon{}, fmt.Errorf("%w: first and second are required", errBadRequest)
	}
	a, err := s.manager.Get(first)
	if err != nil {
		return game.Pokemon{}, game.Pokemon{}, err
	}
	b, err := s.manager.Get(second)
	if err != nil {
		return game.Pokemon{}, game.Pokemon{}, err
	}
	return a, b, nil
}

func (s *Server) battleOptions(lang string, seed *int64) []battle.Option {
	opts := append([]battle.Option{}, s.opts.Battle...)
	opts = append(opts, battle.WithLanguage(lang))
	if seed != nil {
		opts = append(opts, battle.WithSeed(*seed))
	}
	return opts
}

// lang picks the request language: Accept-Language, then the server default.
func (s *Server) lang(r *http.Request) language.Tag {
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return i18n.ParseTag(accept)
	}
	return i18n.ParseTag(s.opts.Lang)
}

// pause waits StreamDelay and reports whether the client is still there.
func (s *Server) pause(r *http.Request) bool {
	if s.opts.StreamDelay <= 0 {
		return r.Context().Err() == nil
	}
	t := time.NewTimer(s.opts.StreamDelay)
	defer t.Stop()
	select {
	case <-r.Context().Done():
		return false
	case <-t.C:
		return true
	}
}

var errBadRequest = errors.New("bad request")

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, data.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, data.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, game.ErrInvalidStat), errors.Is(err, game.ErrInvalidType),
		errors.Is(err, game.ErrInvalidName), errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Printf("error interno: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("error al escribir JSON: %v", err)
	}
}
