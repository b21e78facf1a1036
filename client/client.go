// Package client watches battles streamed by a pokemon-battle server over websocket.
package client

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"pokemon-battle/game"
	"pokemon-battle/parser"
)

// ErrStreamEnded means the server closed the stream before announcing a winner.
var ErrStreamEnded = errors.New("stream ended before the battle finished")

type BattleClient struct {
	Conn *websocket.Conn
}

// BattleURL builds the websocket address of a battle between first and second on the
// server at serverURL. A zero seed lets the server pick one.
func BattleURL(serverURL, first, second string, seed int64) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("error al parsear la url del server: %w", err)
	}
	switch u.Scheme {
	case "http", "ws", "":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("esquema no soportado: %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/battle/ws"
	q := url.Values{}
	q.Set("first", first)
	q.Set("second", second)
	if seed != 0 {
		q.Set("seed", strconv.FormatInt(seed, 10))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial opens the stream of a new battle between first and second.
func Dial(serverURL, first, second string, seed int64) (*BattleClient, error) {
	addr, err := BattleURL(serverURL, first, second, seed)
	if err != nil {
		return nil, err
	}

	log.Printf("Conectando a %s", addr)
	c, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("error al conectar con el websocket: %w", err)
	}
	log.Println("conectado exitosamente al servidor de batallas.")
	return &BattleClient{Conn: c}, nil
}

// Watch reads protocol lines into a battle state until the winner is announced.
// onLine, when set, sees every line after it is applied.
func (bc *BattleClient) Watch(onLine func(state *game.BattleState, line string)) (*game.BattleState, error) {
	state := game.NewBattleState()
	for {
		_, message, err := bc.Conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return state, ErrStreamEnded
			}
			return state, fmt.Errorf("error de lectura: %w", err)
		}
		for _, line := range strings.Split(string(message), "\n") {
			if msg, ok := strings.CutPrefix(line, "|error|"); ok {
				return state, fmt.Errorf("el servidor reportó un error: %s", msg)
			}
			parser.ProcessLine(state, line)
			if onLine != nil {
				onLine(state, line)
			}
		}
		if state.Finished() {
			return state, nil
		}
	}
}

func (bc *BattleClient) Close() error {
	return bc.Conn.Close()
}
