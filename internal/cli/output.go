package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case SignInResult:
		o.printSignInResult(v)
	case Card:
		o.printCard(v)
	case []Card:
		for _, c := range v {
			o.printCardLine(c)
		}
	case Deck:
		o.printDeck(v)
	case []Deck:
		for _, d := range v {
			fmt.Fprintf(o.w, "#%d %s (%d cards)\n", d.ID, d.Name, len(d.Cards))
		}
	case Room:
		o.printRoom(v)
	case []Room:
		if len(v) == 0 {
			fmt.Fprintln(o.w, "No rooms waiting")
		}
		for _, r := range v {
			o.printRoom(r)
		}
	case Event:
		o.printEvent(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// SignUpResult is the response of sign-up
type SignUpResult struct {
	User User `json:"user"`
}

// SignInResult combines user and token
type SignInResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// Card response type
type Card struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	HP            int    `json:"hp"`
	Attack        int    `json:"attack"`
	Type          string `json:"type"`
	PokedexNumber int    `json:"pokedexNumber"`
	ImageURL      string `json:"imgUrl,omitempty"`
}

// Deck response type
type Deck struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	Cards     []Card    `json:"cards"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Player is a seated player
type Player struct {
	UserID      int64  `json:"userId"`
	DisplayName string `json:"displayName"`
	DeckID      int64  `json:"deckId"`
}

// Room response type, shared by the API and the realtime channel
type Room struct {
	ID     int64   `json:"id"`
	Host   Player  `json:"host"`
	Guest  *Player `json:"guest,omitempty"`
	Status string  `json:"status"`
}

// HealthResult response type
type HealthResult struct {
	Status      string `json:"status"`
	Rooms       int    `json:"rooms"`
	Connections int    `json:"connections"`
}

func (o *Output) printUser(u User) {
	fmt.Fprintf(o.w, "User: %s <%s> (#%d)\n", u.Username, u.Email, u.ID)
}

func (o *Output) printSignInResult(r SignInResult) {
	o.printUser(r.User)
	fmt.Fprintf(o.w, "Token: %s\n", r.Token)
	fmt.Fprintf(o.w, "Expires: %s\n", r.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printCard(c Card) {
	fmt.Fprintf(o.w, "Card #%d: %s\n", c.ID, c.Name)
	fmt.Fprintf(o.w, "Type: %s\n", c.Type)
	fmt.Fprintf(o.w, "HP: %d  Attack: %d\n", c.HP, c.Attack)
	fmt.Fprintf(o.w, "Pokedex: %d\n", c.PokedexNumber)
}

func (o *Output) printCardLine(c Card) {
	fmt.Fprintf(o.w, "#%-4d %-12s %-9s HP %3d  ATK %3d\n", c.ID, c.Name, c.Type, c.HP, c.Attack)
}

func (o *Output) printDeck(d Deck) {
	fmt.Fprintf(o.w, "Deck #%d: %s\n", d.ID, d.Name)
	fmt.Fprintf(o.w, "Cards (%d):\n", len(d.Cards))
	for _, c := range d.Cards {
		fmt.Fprint(o.w, "  ")
		o.printCardLine(c)
	}
}

func (o *Output) printRoom(r Room) {
	guest := "-"
	if r.Guest != nil {
		guest = fmt.Sprintf("%s (deck %d)", r.Guest.DisplayName, r.Guest.DeckID)
	}
	fmt.Fprintf(o.w, "Room %d [%s] host: %s (deck %d) guest: %s\n",
		r.ID, r.Status, r.Host.DisplayName, r.Host.DeckID, guest)
}

func (o *Output) printEvent(e Event) {
	timestamp := e.Time.Format("2006-01-02 15:04:05")
	data := strings.ReplaceAll(string(e.Data), "\n", " ")
	if len(data) > 200 {
		data = data[:200] + "..."
	}
	fmt.Fprintf(o.w, "[%s] %s: %s\n", timestamp, e.Event, data)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Rooms: %d\n", h.Rooms)
	fmt.Fprintf(o.w, "Connections: %d\n", h.Connections)
}
