package gsplat

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

type App struct {
	modules   []Module
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any

	exitRequested bool
	frames        uint64
}

type Module interface {
	Install(app *App, cmd *Commands)
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// Run executes every frame stage in order until a system asks to exit, then
// runs the Shutdown stage once.
func (app *App) Run() {
	log := app.Logger()
	log.Infof("app: running %d stages", len(app.stages))

	for !app.exitRequested {
		app.Step()
	}
	app.shutdown()
	log.Infof("app: stopped after %d frames", app.frames)
}

// RunFrames runs at most n frames and then shuts down. An exit request ends
// it early.
func (app *App) RunFrames(n int) {
	for i := 0; i < n && !app.exitRequested; i++ {
		app.Step()
	}
	app.shutdown()
}

// Step runs one frame.
func (app *App) Step() {
	for _, stage := range app.stages {
		if stage.Name == Shutdown.Name {
			continue
		}
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
	}
	app.frames++
}

// Frames is the number of completed frames.
func (app *App) Frames() uint64 { return app.frames }

// shutdown runs the Shutdown systems once, last registered first, so modules
// tear down before the modules they were built on.
func (app *App) shutdown() {
	systems := app.systems[Shutdown.Name]
	app.systems[Shutdown.Name] = nil
	for i := len(systems) - 1; i >= 0; i-- {
		app.callSystem(systems[i])
	}
}

func (app *App) requestExit() {
	app.exitRequested = true
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the resource stored under T, if any.
func Resource[T any](app *App) (*T, bool) {
	r, ok := app.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return r.(*T), true
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			app.unresolved(systemValue, systemType, argType)
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			app.unresolved(systemValue, systemType, argType)
		}
	}
	systemValue.Call(args)
}

func (app *App) unresolved(systemValue reflect.Value, systemType, argType reflect.Type) {
	msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		fmt.Sprint(systemType),
		fmt.Sprint(argType),
	)
	app.Logger().Errorf("%s", msg)
	panic(msg)
}
