package optparse

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/pixtype"
)

// IntChecker parses a base-10 signed integer argument.
func IntChecker() Checker {
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, ArgIllegal, fmt.Errorf("not an integer: %q", raw)
		}
		return v, ArgOK, nil
	})
}

// FloatChecker parses a floating-point argument, accepting "inf"/
// "-inf"/"infinity" the same way the interval checkers do.
func FloatChecker() Checker {
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		v, err := parseFloatToken(raw)
		if err != nil {
			return nil, ArgIllegal, err
		}
		return v, ArgOK, nil
	})
}

func parseFloatToken(raw string) (float64, error) {
	t := strings.TrimSpace(raw)
	lower := strings.ToLower(t)
	switch lower {
	case "inf", "+inf", "infinity", "+infinity":
		return math.Inf(1), nil
	case "-inf", "-infinity":
		return math.Inf(-1), nil
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return v, nil
}

// AngleChecker parses a degree-or-radian angle: a number optionally
// suffixed "deg"/"degrees"/"d" or "rad"/"radians"/"r" (case
// insensitive). A bare number is taken as degrees. The returned value
// is always in radians, the unit the rest of the geo package works in.
func AngleChecker() Checker {
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		t := strings.TrimSpace(raw)
		lower := strings.ToLower(t)
		numPart := t
		degrees := true
		switch {
		case strings.HasSuffix(lower, "degrees"):
			numPart = t[:len(t)-len("degrees")]
		case strings.HasSuffix(lower, "radians"):
			numPart = t[:len(t)-len("radians")]
			degrees = false
		case strings.HasSuffix(lower, "deg"):
			numPart = t[:len(t)-len("deg")]
		case strings.HasSuffix(lower, "rad"):
			numPart = t[:len(t)-len("rad")]
			degrees = false
		case strings.HasSuffix(lower, "d"):
			numPart = t[:len(t)-1]
		case strings.HasSuffix(lower, "r"):
			numPart = t[:len(t)-1]
			degrees = false
		}
		v, err := parseFloatToken(strings.TrimSpace(numPart))
		if err != nil {
			return nil, ArgIllegal, fmt.Errorf("not an angle: %q", raw)
		}
		if degrees {
			v = v * math.Pi / 180
		}
		return v, ArgOK, nil
	})
}

// LongLat is a geographic coordinate in (longitude, latitude) order,
// matching the toolkit's long/lat glossary convention.
type LongLat struct {
	Lon, Lat float64
}

// LongLatChecker parses "lon,lat" or "lon lat", each component
// optionally suffixed by a N/S/E/W hemisphere letter.
func LongLatChecker() Checker {
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		fields := splitCoordFields(raw)
		if len(fields) != 2 {
			return nil, ArgIllegal, fmt.Errorf("long/lat %q: expected two components", raw)
		}
		lon, err := parseHemisphereValue(fields[0], "EW")
		if err != nil {
			return nil, ArgIllegal, err
		}
		lat, err := parseHemisphereValue(fields[1], "NS")
		if err != nil {
			return nil, ArgIllegal, err
		}
		if lon < -180 || lon > 180 {
			return nil, ArgIllegal, fmt.Errorf("longitude %v out of range [-180,180]", lon)
		}
		if lat < -90 || lat > 90 {
			return nil, ArgIllegal, fmt.Errorf("latitude %v out of range [-90,90]", lat)
		}
		return LongLat{Lon: lon, Lat: lat}, ArgOK, nil
	})
}

func splitCoordFields(raw string) []string {
	s := strings.ReplaceAll(raw, ",", " ")
	return strings.Fields(s)
}

func parseHemisphereValue(tok string, letters string) (float64, error) {
	t := strings.TrimSpace(tok)
	if t == "" {
		return 0, fmt.Errorf("empty coordinate component")
	}
	last := t[len(t)-1]
	sign := 1.0
	if strings.ContainsRune(letters, rune(upper(last))) {
		if upper(last) == rune(letters[1]) { // S or W is the second letter, negative
			sign = -1.0
		}
		t = t[:len(t)-1]
	}
	v, err := parseFloatToken(t)
	if err != nil {
		return 0, fmt.Errorf("invalid coordinate component %q", tok)
	}
	return v * sign, nil
}

func upper(b byte) rune {
	if b >= 'a' && b <= 'z' {
		return rune(b - 'a' + 'A')
	}
	return rune(b)
}

// PixelTypeChecker parses "{uint8|int8|uint16|int16|int32|float32|
// float64}[xN]", with aliases Byte=uint8, Float/Single=float32,
// Double=float64 (case-insensitive). Channels is 0 when no "xN"
// suffix is present, meaning "inherit the image's own channel count".
func PixelTypeChecker() Checker {
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		t := strings.TrimSpace(raw)
		name, channels := t, 0
		if idx := strings.IndexAny(t, "xX"); idx > 0 {
			if n, err := strconv.Atoi(t[idx+1:]); err == nil {
				name = t[:idx]
				channels = n
			}
		}
		base, err := parseBaseTypeName(name)
		if err != nil {
			return nil, ArgIllegal, err
		}
		return pixtype.FullType{Base: base, Channels: channels}, ArgOK, nil
	})
}

func parseBaseTypeName(name string) (pixtype.BaseType, error) {
	switch strings.ToLower(name) {
	case "uint8", "byte":
		return pixtype.Uint8, nil
	case "int8":
		return pixtype.Int8, nil
	case "uint16":
		return pixtype.Uint16, nil
	case "int16":
		return pixtype.Int16, nil
	case "int32":
		return pixtype.Int32, nil
	case "float32", "float", "single":
		return pixtype.Float32, nil
	case "float64", "double":
		return pixtype.Float64, nil
	default:
		return 0, fmt.Errorf("unrecognized pixel type %q", name)
	}
}

// FilenameChecker validates a filename argument. When mustExist is
// true, the file must already be present on disk.
func FilenameChecker(mustExist bool) Checker {
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		if raw == "" {
			return nil, ArgIllegal, fuserr.Invalidf("filename argument is empty")
		}
		if mustExist {
			if _, err := os.Stat(raw); err != nil {
				return nil, ArgIllegal, fmt.Errorf("file %q does not exist", raw)
			}
		}
		return raw, ArgOK, nil
	})
}
