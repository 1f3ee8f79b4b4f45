package config

import "time"

const (
	defaultDataRoot         = "/media/dropbox_hdd/Starr Lab Dropbox"
	defaultArchiveRoot      = "/media/dropbox_hdd/Starr Lab Dropbox/RC+S Patient Un-Synced Data"
	defaultLogDir           = "~/.local/share/rcsarchive/logs"
	defaultStateDir         = "~/.local/share/rcsarchive"
	defaultMoveAgeThreshold = 8 * time.Hour
	defaultFirstPatient     = 1
	defaultLastPatient      = 20
	defaultKindA            = "StarrLab"
	defaultKindB            = "SummitContinuousBilateralStreaming"
	defaultSummitDir        = "SummitData"
	defaultUnsyncedSuffix   = " Un-Synced Data"
	defaultRsyncBinary      = "rsync"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogFile          = "move_and_archive.log"
	defaultLogMaxSizeMB     = 50
	defaultLogMaxBackups    = 10
	defaultLogRetentionDays = 90
)

// defaultPatientDirOverrides lists patients whose synced directory name does
// not follow RCS<index>.
func defaultPatientDirOverrides() map[string]string {
	return map[string]string{
		"2": "RC02LTE",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataRoot:    defaultDataRoot,
			ArchiveRoot: defaultArchiveRoot,
			LogDir:      defaultLogDir,
			StateDir:    defaultStateDir,
		},
		Archive: Archive{
			MoveAgeThreshold: defaultMoveAgeThreshold.String(),
			FirstPatient:     defaultFirstPatient,
			LastPatient:      defaultLastPatient,
		},
		Layout: Layout{
			KindA:               defaultKindA,
			KindB:               defaultKindB,
			SummitDir:           defaultSummitDir,
			UnsyncedSuffix:      defaultUnsyncedSuffix,
			PatientDirOverrides: defaultPatientDirOverrides(),
		},
		Rsync: Rsync{
			Binary: defaultRsyncBinary,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			File:          defaultLogFile,
			MaxSizeMB:     defaultLogMaxSizeMB,
			MaxBackups:    defaultLogMaxBackups,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
