package testutil

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Common test errors
var (
	ErrTest        = errors.New("test error")
	ErrIntentional = errors.New("intentional error")
	ErrConstructor = errors.New("constructor error")
)

// Logger is a test logger interface
type Logger interface {
	Log(msg string)
	Logs() []string
}

// MemoryLogger implements Logger
type MemoryLogger struct {
	ID string `inject:"-"`

	logs []string
	mu   sync.Mutex
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{ID: uuid.NewString()}
}

func (l *MemoryLogger) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = append(l.logs, msg)
}

func (l *MemoryLogger) Logs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	result := make([]string, len(l.logs))
	copy(result, l.logs)
	return result
}

// Database is a test database interface
type Database interface {
	Query(sql string) string
}

// SQLDatabase implements Database. Its DSN is a plain value parameter.
type SQLDatabase struct {
	DSN string
}

func (d *SQLDatabase) Query(sql string) string {
	return fmt.Sprintf("%s: %s", d.DSN, sql)
}

// Repository depends on two interfaces.
type Repository struct {
	DB     Database
	Logger Logger
}

// Service depends on a concrete type and has a defaulted value.
type Service struct {
	Repo *Repository
	Name string `default:"service"`
}

// Counter carries a unique ID so tests can tell instances apart.
type Counter struct {
	ID string `inject:"-"`
}

// NewCounter creates a Counter with a fresh ID.
func NewCounter() *Counter {
	return &Counter{ID: uuid.NewString()}
}

// Holder holds a Counter.
type Holder struct {
	Counter *Counter
}

// CycleA and CycleB depend on each other.
type CycleA struct {
	B *CycleB
}

type CycleB struct {
	A *CycleA
}

// SelfCycle depends on itself.
type SelfCycle struct {
	Self *SelfCycle
}

// DependsOnCycle leads into the CycleA/CycleB loop.
type DependsOnCycle struct {
	A *CycleA
}

// Optional has typed dependencies that fall back to their zero value
// unless a binding exists for their type.
type Optional struct {
	Logger  Logger   `inject:",optional"`
	Counter *Counter `inject:",optional"`
}

// Config has only plain value fields.
type Config struct {
	Host    string
	Port    int           `default:"8080"`
	Timeout time.Duration `default:"5s"`
	Debug   bool          `inject:"-"`
}

// Limits has numeric fields narrower than the values usually supplied.
type Limits struct {
	Retries int8    `default:"3"`
	Workers uint    `default:"4"`
	Ratio   float32 `default:"0.5"`
	Batch   int     `default:"10"`
}

// Label has a single string value with a default.
type Label struct {
	Name string `default:"x"`
}

// Endpoint renames its fields' parameters.
type Endpoint struct {
	Address string `inject:"addr"`
	Secure  bool   `inject:"tls,optional"`
}

// Stage is one step of a Pipeline.
type Stage interface {
	Apply(s string) string
}

// UpperStage upper-cases its input.
type UpperStage struct{}

func (UpperStage) Apply(s string) string { return strings.ToUpper(s) }

// TrimStage trims surrounding whitespace.
type TrimStage struct{}

func (TrimStage) Apply(s string) string { return strings.TrimSpace(s) }

// Pipeline is built by a variadic constructor.
type Pipeline struct {
	Name   string
	Stages []Stage
}

// NewPipeline creates a Pipeline.
func NewPipeline(name string, stages ...Stage) *Pipeline {
	return &Pipeline{Name: name, Stages: stages}
}

// Run applies every stage in order.
func (p *Pipeline) Run(s string) string {
	for _, stage := range p.Stages {
		s = stage.Apply(s)
	}
	return s
}

// Tags is built by a variadic constructor of plain values.
type Tags struct {
	Values []string
}

// NewTags creates Tags.
func NewTags(values ...string) *Tags {
	return &Tags{Values: values}
}

// Greeter is invokable.
type Greeter struct {
	Prefix string `default:"hello"`
}

// Invoke greets name.
func (g *Greeter) Invoke(name string) string {
	return g.Prefix + " " + name
}

// Shout greets name loudly.
func (g *Greeter) Shout(name string) string {
	return strings.ToUpper(g.Invoke(name))
}

// GreeterVersion is registered as a static method of Greeter.
func GreeterVersion() string {
	return "v1"
}

// BaseHandler is embedded by ChildHandler.
type BaseHandler struct{}

// Handle identifies the handler.
func (h *BaseHandler) Handle() string { return "base" }

// ChildHandler overrides Handle.
type ChildHandler struct {
	BaseHandler
}

// Handle identifies the handler.
func (h *ChildHandler) Handle() string { return "child" }

// Failing has a constructor that always fails.
type Failing struct{}

// NewFailing returns ErrConstructor.
func NewFailing() (*Failing, error) {
	return nil, ErrConstructor
}

// Flaky fails on its first construction only.
type Flaky struct {
	Dep *FlakyDep
}

// FlakyDep is the dependency of Flaky whose constructor can fail.
type FlakyDep struct{}

// FlakyConstructor returns a FlakyDep constructor that fails the first n calls.
func FlakyConstructor(n int) func() (*FlakyDep, error) {
	var mu sync.Mutex
	calls := 0
	return func() (*FlakyDep, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls <= n {
			return nil, ErrIntentional
		}
		return &FlakyDep{}, nil
	}
}

// hidden cannot be built from outside this package.
type hidden struct {
	Value string
}

// NewHiddenSample returns a typed nil pointer for registering hidden.
func NewHiddenSample() any {
	return (*hidden)(nil)
}

// NewHidden returns a hidden instance.
func NewHidden(value string) any {
	return &hidden{Value: value}
}

// HiddenValue returns the value of a hidden instance.
func HiddenValue(v any) string {
	if h, ok := v.(*hidden); ok {
		return h.Value
	}
	return ""
}

// Mailer is an interface delegated to a factory.
type Mailer interface {
	Send(to string) string
}

// SMTPMailer implements Mailer.
type SMTPMailer struct {
	Host string
}

func (m *SMTPMailer) Send(to string) string {
	return m.Host + " -> " + to
}

// MailerFactory builds mailers when invoked.
type MailerFactory struct {
	Host string `default:"smtp.local"`
}

// Invoke creates a Mailer.
func (f *MailerFactory) Invoke() Mailer {
	return &SMTPMailer{Host: f.Host}
}

// Signup depends on a Mailer.
type Signup struct {
	Mailer Mailer
}
