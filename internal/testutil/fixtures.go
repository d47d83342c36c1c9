package testutil

import (
	"reflect"
	"testing"

	"github.com/junioryono/injector"
	"github.com/stretchr/testify/require"
)

// Samples lists every fixture type for registration.
var Samples = []any{
	(*Logger)(nil),
	(*MemoryLogger)(nil),
	(*Database)(nil),
	(*SQLDatabase)(nil),
	(*Repository)(nil),
	(*Service)(nil),
	(*Counter)(nil),
	(*Holder)(nil),
	(*CycleA)(nil),
	(*CycleB)(nil),
	(*SelfCycle)(nil),
	(*DependsOnCycle)(nil),
	(*Optional)(nil),
	(*Config)(nil),
	(*Endpoint)(nil),
	(*Limits)(nil),
	(*Label)(nil),
	(*Stage)(nil),
	UpperStage{},
	TrimStage{},
	(*Pipeline)(nil),
	(*Tags)(nil),
	(*Greeter)(nil),
	(*BaseHandler)(nil),
	(*ChildHandler)(nil),
	(*Failing)(nil),
	(*Flaky)(nil),
	(*FlakyDep)(nil),
	NewHiddenSample(),
	(*Mailer)(nil),
	(*SMTPMailer)(nil),
	(*MailerFactory)(nil),
	(*Signup)(nil),
}

// Fixture names, as the injector spells them.
var (
	LoggerName         = injector.NameOf[Logger]()
	MemoryLoggerName   = injector.NameOf[*MemoryLogger]()
	DatabaseName       = injector.NameOf[Database]()
	SQLDatabaseName    = injector.NameOf[*SQLDatabase]()
	RepositoryName     = injector.NameOf[*Repository]()
	ServiceName        = injector.NameOf[*Service]()
	CounterName        = injector.NameOf[*Counter]()
	HolderName         = injector.NameOf[*Holder]()
	CycleAName         = injector.NameOf[*CycleA]()
	CycleBName         = injector.NameOf[*CycleB]()
	SelfCycleName      = injector.NameOf[*SelfCycle]()
	DependsOnCycleName = injector.NameOf[*DependsOnCycle]()
	OptionalName       = injector.NameOf[*Optional]()
	ConfigName         = injector.NameOf[*Config]()
	EndpointName       = injector.NameOf[*Endpoint]()
	LimitsName         = injector.NameOf[*Limits]()
	LabelName          = injector.NameOf[*Label]()
	StageName          = injector.NameOf[Stage]()
	UpperStageName     = injector.NameOf[UpperStage]()
	TrimStageName      = injector.NameOf[TrimStage]()
	PipelineName       = injector.NameOf[*Pipeline]()
	TagsName           = injector.NameOf[*Tags]()
	GreeterName        = injector.NameOf[*Greeter]()
	ChildHandlerName   = injector.NameOf[*ChildHandler]()
	FailingName        = injector.NameOf[*Failing]()
	FlakyName          = injector.NameOf[*Flaky]()
	FlakyDepName       = injector.NameOf[*FlakyDep]()
	HiddenName         = injector.TypeName(reflect.TypeOf(NewHiddenSample()))
	MailerName         = injector.NameOf[Mailer]()
	SMTPMailerName     = injector.NameOf[*SMTPMailer]()
	MailerFactoryName  = injector.NameOf[*MailerFactory]()
	SignupName         = injector.NameOf[*Signup]()
)

// RegisterFixtures registers every fixture type and the fixture
// constructors with inj's type registry.
func RegisterFixtures(t *testing.T, inj *injector.Injector) {
	t.Helper()

	types := inj.Types()
	require.NotNil(t, types, "injector has no type registry")

	require.NoError(t, types.Register(Samples...))
	require.NoError(t, types.RegisterConstructor(NewPipeline, injector.Params("name", "stages")))
	require.NoError(t, types.RegisterConstructor(NewTags, injector.Params("values")))
	require.NoError(t, types.RegisterConstructor(NewFailing))
	require.NoError(t, types.RegisterStatic((*Greeter)(nil), "Version", GreeterVersion))
	require.NoError(t, types.RegisterMethod((*Greeter)(nil), "Invoke", injector.Params("name")))
	require.NoError(t, types.RegisterMethod((*Greeter)(nil), "Shout", injector.Params("name")))
}

// NewInjector creates an injector with every fixture registered.
func NewInjector(t *testing.T, opts ...injector.Option) *injector.Injector {
	t.Helper()

	inj := injector.New(opts...)
	RegisterFixtures(t, inj)
	return inj
}
