// Package remotelog клиент удалённого лог-сервиса.
// События валидируются и отправляются JSON POST-ом с bearer-токеном;
// при любой ошибке событие дублируется в локальный лог. Вызовы никогда
// не возвращают ошибку вызывающему коду и не блокируют его дольше таймаута.
package remotelog

import (
	"context"
	"strings"
)

type Stack string

const (
	StackBackend  Stack = "backend"
	StackFrontend Stack = "frontend"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// Package имя пакета-источника события. Допустимый набор зависит от stack.
type Package string

const (
	PackageHandler    Package = "handler"
	PackageDB         Package = "db"
	PackageService    Package = "service"
	PackageRepository Package = "repository"
	PackageController Package = "controller"
	PackageMiddleware Package = "middleware"
	PackageRoute      Package = "route"
	PackageAPI        Package = "api"
	PackageUtils      Package = "utils"
	PackageConfig     Package = "config"
)

// Event полезная нагрузка, уходящая на удалённый endpoint.
type Event struct {
	Stack   string `json:"stack"`
	Level   string `json:"level"`
	Package string `json:"package"`
	Message string `json:"message"`
}

// Response ответ удалённого лог-сервиса.
type Response struct {
	LogID   string `json:"logID"`
	Message string `json:"message"`
}

// Sink приёмник структурированных лог-событий.
// Реализации обязаны быть fire-and-forget: не возвращать ошибок и не паниковать.
type Sink interface {
	Log(ctx context.Context, stack Stack, level Level, pkg Package, message string)
}

var validStacks = map[Stack]struct{}{
	StackBackend:  {},
	StackFrontend: {},
}

var validLevels = map[Level]struct{}{
	LevelDebug: {},
	LevelInfo:  {},
	LevelWarn:  {},
	LevelError: {},
	LevelFatal: {},
}

var backendPackages = map[Package]struct{}{
	PackageHandler:    {},
	PackageDB:         {},
	PackageService:    {},
	PackageRepository: {},
	PackageController: {},
	PackageMiddleware: {},
	PackageRoute:      {},
	PackageUtils:      {},
	PackageConfig:     {},
}

var frontendPackages = map[Package]struct{}{
	PackageAPI:    {},
	PackageUtils:  {},
	PackageConfig: {},
}

func isValidStack(stack Stack) bool {
	_, ok := validStacks[stack]
	return ok
}

func isValidLevel(level Level) bool {
	_, ok := validLevels[level]
	return ok
}

func isValidPackage(pkg Package, stack Stack) bool {
	if stack == StackFrontend {
		_, ok := frontendPackages[pkg]
		return ok
	}
	_, ok := backendPackages[pkg]
	return ok
}

// normalize приводит поля события к нижнему регистру, как требует API.
func normalize(stack Stack, level Level, pkg Package) (Stack, Level, Package) {
	return Stack(strings.ToLower(string(stack))),
		Level(strings.ToLower(string(level))),
		Package(strings.ToLower(string(pkg)))
}
