package site

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"elysion/internal/model"
)

//go:embed content.yaml
var embedded embed.FS

const DefaultContentFile = "content.yaml"

var (
	ErrUnknownWorkshop = errors.New("unknown workshop")
	ErrNoEventStart    = errors.New("event start is not set")
)

type Content struct {
	Event      Event      `yaml:"event"`
	Nav        []Link     `yaml:"nav"`
	About      []string   `yaml:"about"`
	Activities []Activity `yaml:"activities"`
	Workshops  []Workshop `yaml:"workshops"`
	Talk       Talk       `yaml:"talk"`
	Speakers   []Speaker  `yaml:"speakers"`
	Gallery    []Image    `yaml:"gallery"`
	Venue      Venue      `yaml:"venue"`
	Contacts   []Contact  `yaml:"contacts"`
	Sponsors   []Image    `yaml:"sponsors"`
	Terms      []string   `yaml:"terms"`
	Preload    []string   `yaml:"preload"`
}

type Event struct {
	Name      string    `yaml:"name"`
	Edition   string    `yaml:"edition"`
	Tagline   string    `yaml:"tagline"`
	Lead      string    `yaml:"lead"`
	Organiser string    `yaml:"organiser"`
	Dates     string    `yaml:"dates"`
	Starts    time.Time `yaml:"starts"`
	Logo      string    `yaml:"logo"`
	Hero      string    `yaml:"hero"`
	Blurb     string    `yaml:"blurb"`
}

type Link struct {
	Name string `yaml:"name"`
	Href string `yaml:"href"`
}

type Activity struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

type Leader struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
}

type Workshop struct {
	Key         model.Workshop `yaml:"key"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Extra       string         `yaml:"extra"`
	Image       string         `yaml:"image"`
	Leaders     []Leader       `yaml:"leaders"`
	CTA         string         `yaml:"cta"`
}

type Talk struct {
	Title  string `yaml:"title"`
	Byline string `yaml:"byline"`
}

type Speaker struct {
	Name   string `yaml:"name"`
	Role   string `yaml:"role"`
	Status string `yaml:"status"`
	Photo  string `yaml:"photo"`
}

type Image struct {
	Src string `yaml:"src"`
	Alt string `yaml:"alt"`
}

type Venue struct {
	Name       string   `yaml:"name"`
	Address    []string `yaml:"address"`
	MapEmbed   string   `yaml:"map_embed"`
	Directions string   `yaml:"directions"`
}

type Contact struct {
	Name  string `yaml:"name"`
	Role  string `yaml:"role"`
	Phone string `yaml:"phone"`
}

// Load reads site content from fsys. Every workshop key must be one the
// registration form accepts.
func Load(fsys fs.FS, name string) (*Content, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read content %s: %w", name, err)
	}

	var c Content
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse content %s: %w", name, err)
	}
	if c.Event.Starts.IsZero() {
		return nil, ErrNoEventStart
	}
	for _, w := range c.Workshops {
		if !w.Key.Valid() {
			return nil, fmt.Errorf("%w %q in %s", ErrUnknownWorkshop, w.Key, name)
		}
	}
	return &c, nil
}

// Default returns the content compiled into the binary.
func Default() (*Content, error) {
	return Load(embedded, DefaultContentFile)
}

// WorkshopTitle returns the display title for key, or the key itself.
func (c *Content) WorkshopTitle(key string) string {
	for _, w := range c.Workshops {
		if string(w.Key) == key {
			return w.Title
		}
	}
	return key
}
