package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging and portal outlines")
	flagLog         = flag.String("log", "", "Write logs to this file")
	flagTextures    = flag.String("textures", "", "Texture directory for the level")
	flagWindow      = flag.Bool("window", false, "Open a desktop window instead of using the terminal")
	flagScale       = flag.Int("scale", 0, "Window scale factor")
	flagFPS         = flag.Int("fps", 0, "Target FPS")
	flagFOV         = flag.Float64("fov", 0, "Vertical field of view in degrees")
	flagShading     = flag.String("shading", "", "Shading mode: none, flat or gouraud")
	flagPerspective = flag.Bool("perspective", false, "Perspective-correct texturing")
	flagNoJitter    = flag.Bool("nojitter", false, "Disable vertex snapping")
	flagNoDepth     = flag.Bool("nodepth", false, "Disable the depth buffer (painter's order)")
	flagDither      = flag.Bool("dither", false, "Enable ordered dithering")
	flagSnapshot    = flag.String("png", "", "Render one frame to a PNG file and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// LevelArg returns the level file named on the command line, if any.
func LevelArg() string {
	return flag.Arg(0)
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Render.ShowPortals = true
	}
	if *flagLog != "" {
		cfg.Logging.LogFile = *flagLog
	}
	if path := LevelArg(); path != "" {
		cfg.Level.Path = path
	}
	if *flagTextures != "" {
		cfg.Level.TextureDir = *flagTextures
	}
	if *flagWindow {
		cfg.View.Window = true
	}
	if *flagScale > 0 {
		cfg.View.Scale = *flagScale
	}
	if *flagFPS > 0 {
		cfg.View.FPS = *flagFPS
	}
	if *flagFOV > 0 {
		cfg.View.FOV = *flagFOV
	}
	if *flagShading != "" {
		cfg.Render.Shading = *flagShading
	}
	if *flagPerspective {
		cfg.Render.PerspectiveCorrect = true
	}
	if *flagNoJitter {
		cfg.Render.VertexJitter = false
	}
	if *flagNoDepth {
		cfg.Render.DepthTest = false
	}
	if *flagDither {
		cfg.Render.Dithering = true
	}
	if *flagSnapshot != "" {
		cfg.View.Snapshot = *flagSnapshot
	}
}
