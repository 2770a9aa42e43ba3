package archetype

import (
	"github.com/simonhull/forge/internal/features"
	"github.com/simonhull/forge/internal/manifest"
)

// commonFiles are shared by every single-module archetype.
func commonFiles() []manifest.Entry {
	return []manifest.Entry{
		manifest.File("common/go.mod.tmpl", "go.mod"),
		manifest.File("common/README.md.tmpl", "README.md"),
		manifest.File("common/gitignore.tmpl", ".gitignore"),
		manifest.Optional("common/LICENSE.tmpl", "LICENSE"),
		manifest.File("common/Makefile.tmpl", "Makefile"),
	}
}

func withCommon(entries ...manifest.Entry) []manifest.Entry {
	return append(commonFiles(), entries...)
}

var ciFeatures = []string{features.GitHubActions, features.GitLabCI, features.Linting}

func allow(names ...string) []string {
	return append(names, ciFeatures...)
}

// Builtin returns the built-in archetypes in registry order.
func Builtin() []Archetype {
	return []Archetype{
		{
			Name:        CLITool,
			Description: "Command-line application with a cmd/ entry point",
			Files: withCommon(
				manifest.File("cli-tool/main.go.tmpl", "cmd/{{ project_name }}/main.go"),
				manifest.File("cli-tool/app.go.tmpl", "internal/app/app.go"),
				manifest.File("cli-tool/app_test.go.tmpl", "internal/app/app_test.go"),
			),
			Defaults: []string{features.Cobra, features.Testing},
			Features: allow(features.Cobra, features.UrfaveCLI, features.Database, features.Docker, features.Testing),
		},
		{
			Name:        Library,
			Description: "Importable Go package with examples and tests",
			Files: withCommon(
				manifest.File("library/lib.go.tmpl", "{{ package_name }}.go"),
				manifest.File("library/lib_test.go.tmpl", "{{ package_name }}_test.go"),
				manifest.File("library/doc.go.tmpl", "doc.go"),
				manifest.File("library/example_test.go.tmpl", "example_test.go"),
			),
			Defaults: []string{features.Testing},
			Features: allow(features.Testing),
		},
		{
			Name:        APIServer,
			Description: "HTTP API server built on chi",
			Files: withCommon(
				manifest.File("api-server/main.go.tmpl", "cmd/server/main.go"),
				manifest.File("api-server/server.go.tmpl", "internal/server/server.go"),
				manifest.File("api-server/routes.go.tmpl", "internal/server/routes.go"),
				manifest.File("api-server/handlers.go.tmpl", "internal/server/handlers.go"),
				manifest.File("api-server/handlers_test.go.tmpl", "internal/server/handlers_test.go"),
				manifest.File("api-server/config.go.tmpl", "internal/config/config.go"),
				manifest.File("api-server/env.example.tmpl", ".env.example"),
			),
			Dependencies: []manifest.Dependency{
				{Path: "github.com/go-chi/chi/v5", Version: "v5.1.0"},
			},
			Defaults: []string{features.Testing},
			Features: allow(features.Database, features.Auth, features.Docker, features.Compose, features.Testing),
		},
		{
			Name:        WasmApp,
			Description: "WebAssembly application for the browser (GOOS=js)",
			Files: withCommon(
				manifest.File("wasm-app/main.go.tmpl", "cmd/wasm/main.go"),
				manifest.File("wasm-app/index.html.tmpl", "web/index.html"),
				manifest.File("wasm-app/app.js.tmpl", "web/app.js"),
				manifest.Executable("wasm-app/build.sh.tmpl", "build.sh"),
			),
			Features: allow(),
		},
		{
			Name:        GameEngine,
			Description: "2D game on Ebitengine with an asset tree",
			Files: withCommon(
				manifest.File("game-engine/main.go.tmpl", "cmd/{{ project_name }}/main.go"),
				manifest.File("game-engine/game.go.tmpl", "internal/game/game.go"),
				manifest.File("game-engine/game_test.go.tmpl", "internal/game/game_test.go"),
				manifest.Dir("assets/images"),
				manifest.Dir("assets/audio"),
				manifest.Dir("assets/fonts"),
				manifest.Dir("assets/shaders"),
				manifest.File("game-engine/assets-README.md.tmpl", "assets/README.md"),
				manifest.File("game-engine/web.yml.tmpl", ".github/workflows/web.yml"),
			),
			Dependencies: []manifest.Dependency{
				{Path: "github.com/hajimehoshi/ebiten/v2", Version: "v2.8.5"},
			},
			Features: allow(features.Testing),
		},
		{
			Name:        Embedded,
			Description: "TinyGo firmware for microcontrollers",
			Files: withCommon(
				manifest.File("embedded/main.go.tmpl", "main.go"),
				manifest.File("embedded/targets-README.md.tmpl", "targets/README.md"),
			),
			Dependencies: []manifest.Dependency{
				{Path: "tinygo.org/x/drivers", Version: "v0.28.0"},
			},
			Features: []string{features.GitHubActions, features.Linting},
		},
		{
			Name:        Workspace,
			Description: "Multi-module go.work workspace with core, api and cli modules",
			Files: []manifest.Entry{
				manifest.File("workspace/go.work.tmpl", "go.work"),
				manifest.File("common/README.md.tmpl", "README.md"),
				manifest.File("common/gitignore.tmpl", ".gitignore"),
				manifest.Optional("common/LICENSE.tmpl", "LICENSE"),
				manifest.File("common/Makefile.tmpl", "Makefile"),
				manifest.File("workspace/core.go.mod.tmpl", "core/go.mod"),
				manifest.File("workspace/core.go.tmpl", "core/core.go"),
				manifest.File("workspace/core_test.go.tmpl", "core/core_test.go"),
				manifest.File("workspace/api.go.mod.tmpl", "api/go.mod"),
				manifest.File("workspace/api.go.tmpl", "api/main.go"),
				manifest.File("workspace/cli.go.mod.tmpl", "cli/go.mod"),
				manifest.File("workspace/cli.go.tmpl", "cli/main.go"),
			},
			Defaults: []string{features.GitHubActions},
			Features: allow(),
		},
	}
}
