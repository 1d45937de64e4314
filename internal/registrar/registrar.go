// Package registrar adds bot registrations from an interactive terminal
// session.
package registrar

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/reinodovo/custom-bots/internal/store"
)

var ErrAborted = errors.New("aborted")

var (
	green = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	red   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	white = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

type question struct {
	key    string
	prompt string
}

var questions = []question{
	{"bot_id", "Enter the bot's ID: "},
	{"bot_name", "Enter the bot's name: "},
	{"prefix", "Enter the bot's prefix: "},
	{"status", "Enter the bot's status: "},
	{"activity", "Enter the bot's activity: "},
	{"media", "Enter the bot's media: "},
	{"owner_id", "Enter the bot owner's ID: "},
	{"cogs", "Enter the bot's cogs (separated by a comma): "},
	{"guild_id", "Enter the bot's guild ID: "},
	{"token", "Enter the bot's token: "},
}

type Registrar struct {
	store *store.Store
	in    *bufio.Reader
	out   io.Writer
}

func New(s *store.Store, in io.Reader, out io.Writer) *Registrar {
	return &Registrar{store: s, in: bufio.NewReader(in), out: out}
}

// Run asks for a bot's details and stores it.
func (r *Registrar) Run() (store.Registration, error) {
	r.println(green, "Welcome to the bot adder!")
	r.println(green, "Please answer the following questions:")
	r.println(green, "If you don't know the answer to a question, just press enter to skip it.")
	fmt.Fprintln(r.out)

	answers, err := r.ask()
	if err != nil {
		r.println(red, "Exiting...")
		return store.Registration{}, err
	}

	registration, err := Build(answers)
	if err != nil {
		r.println(red, "Error: "+err.Error())
		return registration, err
	}

	r.println(green, "Adding bot to the database...")
	registration, err = r.store.AddRegistration(registration)
	if err != nil {
		r.println(red, "Error: "+err.Error())
		return registration, err
	}
	r.println(green, fmt.Sprintf("Successfully added %v to the database!", registration.Name))
	return registration, nil
}

func (r *Registrar) ask() (map[string]string, error) {
	answers := make(map[string]string, len(questions))
	for _, q := range questions {
		fmt.Fprint(r.out, white.Render(q.prompt))
		line, err := r.in.ReadString('\n')
		if err == io.EOF && line == "" {
			return nil, ErrAborted
		} else if err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "read answer")
		}
		answers[q.key] = strings.TrimSpace(line)
	}
	return answers, nil
}

func (r *Registrar) println(style lipgloss.Style, text string) {
	fmt.Fprintln(r.out, style.Render(text))
}

// Build turns the answers into a registration. Empty answers leave the field
// unset so the store defaults apply.
func Build(answers map[string]string) (store.Registration, error) {
	registration := store.Registration{
		Name:     answers["bot_name"],
		Prefix:   answers["prefix"],
		Status:   strings.ToLower(answers["status"]),
		Activity: strings.ToLower(answers["activity"]),
		Media:    answers["media"],
		Token:    answers["token"],
		Cogs:     splitList(answers["cogs"]),
	}

	var err error
	if registration.ID, err = parseID(answers, "bot_id"); err != nil {
		return registration, err
	}
	if registration.OwnerID, err = parseID(answers, "owner_id"); err != nil {
		return registration, err
	}
	if registration.GuildID, err = parseID(answers, "guild_id"); err != nil {
		return registration, err
	}

	if registration.Status != "" && !slices.Contains(store.Statuses, registration.Status) {
		return registration, errors.New("status must be one of the following: 'online', 'idle', 'dnd', 'invisible'!")
	}
	return registration, nil
}

func parseID(answers map[string]string, key string) (int64, error) {
	value := answers[key]
	if value == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.Errorf("%v must be an integer!", key)
	}
	return id, nil
}

func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
