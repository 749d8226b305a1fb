package webcodecs

import "github.com/sirupsen/logrus"

// EncoderSupport is the result of probing an encoder configuration.
type EncoderSupport struct {
	Supported           bool
	HardwareAccelerated bool
	EngineName          string
	Error               string        // Engine-reported reason when unsupported
	Config              EncoderConfig // Input config with defaults filled in
}

// DecoderSupport is the result of probing a decoder configuration.
type DecoderSupport struct {
	Supported           bool
	HardwareAccelerated bool
	EngineName          string
	Error               string
	Config              DecoderConfig
}

// ProbeEncoderSupport checks whether a configuration can actually be
// opened by trial-opening (and immediately closing) an engine handle,
// with the same accelerator selection and software fallback rules as
// Configure. Invalid configurations return an error; an engine that
// merely cannot open the config returns Supported=false with the
// engine's reason.
func ProbeEncoderSupport(cfg EncoderConfig) (EncoderSupport, error) {
	rc, err := resolveEncoderConfig(cfg)
	if err != nil {
		return EncoderSupport{}, err
	}

	support := EncoderSupport{Config: normalizeEncoderConfig(cfg)}

	engine, err := EngineFor(rc.plan.Codec)
	if err != nil {
		support.Error = err.Error()
		return support, nil
	}
	support.EngineName = engine.Name()

	handle, accelCtx, used, err := openWithFallback(engine, rc, probeLog())
	if err != nil {
		support.Error = err.Error()
		return support, nil
	}
	_ = handle.Close()
	if accelCtx != nil {
		_ = accelCtx.Close()
	}

	support.Supported = true
	support.HardwareAccelerated = used != AcceleratorNone
	return support, nil
}

// ProbeDecoderSupport is the decoder counterpart of ProbeEncoderSupport.
func ProbeDecoderSupport(cfg DecoderConfig) (DecoderSupport, error) {
	rc, err := resolveDecoderConfig(cfg)
	if err != nil {
		return DecoderSupport{}, err
	}

	support := DecoderSupport{Config: cfg}

	engine, err := EngineFor(rc.plan.Codec)
	if err != nil {
		support.Error = err.Error()
		return support, nil
	}
	support.EngineName = engine.Name()

	handle, accelCtx, used, err := openWithFallback(engine, rc, probeLog())
	if err != nil {
		support.Error = err.Error()
		return support, nil
	}
	_ = handle.Close()
	if accelCtx != nil {
		_ = accelCtx.Close()
	}

	support.Supported = true
	support.HardwareAccelerated = used != AcceleratorNone
	return support, nil
}

// normalizeEncoderConfig fills the defaults Configure would apply, so
// callers see the configuration that would actually be used.
func normalizeEncoderConfig(cfg EncoderConfig) EncoderConfig {
	if cfg.Bitrate <= 0 {
		cfg.Bitrate = 2_000_000
	}
	if cfg.Framerate <= 0 {
		cfg.Framerate = 30
	}
	if cfg.BitrateMode == "" {
		cfg.BitrateMode = "variable"
	}
	if cfg.LatencyMode == "" {
		cfg.LatencyMode = "quality"
	}
	if cfg.HardwareAcceleration == "" {
		cfg.HardwareAcceleration = "no-preference"
	}
	if cfg.Alpha == "" {
		cfg.Alpha = "discard"
	}
	if cfg.AVCFormat == "" && ParseCodec(cfg.Codec) == CodecH264 {
		cfg.AVCFormat = "annexb"
	}
	return cfg
}

func probeLog() *logrus.Entry {
	return logrus.WithField("session", "probe")
}
