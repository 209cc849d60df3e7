package calib

import (
	"github.com/tracktum/go-attitude/internal/config"
	"github.com/tracktum/go-attitude/internal/linalg"
)

// FromConfig builds a Profile from loaded configuration values.
func FromConfig(c *config.Config) Profile {
	rot := c.MagRot
	return Profile{
		AccBias: linalg.NewVec3(c.AccBiasX, c.AccBiasY, c.AccBiasZ),
		AccGain: linalg.NewVec3(c.AccGainX, c.AccGainY, c.AccGainZ),

		MagBias: linalg.NewVec3(c.MagBiasX, c.MagBiasY, c.MagBiasZ),
		MagGain: linalg.NewVec3(c.MagGainX, c.MagGainY, c.MagGainZ),
		MagRot: linalg.NewMat3(
			rot[0], rot[1], rot[2],
			rot[3], rot[4], rot[5],
			rot[6], rot[7], rot[8],
		),

		RotBias: linalg.NewVec3(c.RotBiasX, c.RotBiasY, c.RotBiasZ),
	}
}
