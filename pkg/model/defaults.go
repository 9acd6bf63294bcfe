package model

import (
	"time"
)

const (
	DefaultOrder            = OrderRecent
	DefaultExtension        = ".mp3"
	DefaultSubscriptionFile = "podcasts.xml"
	DefaultFetchTimeout     = 10 * time.Minute
	DefaultUserAgent        = "podkey"
	DefaultSchedule         = "@every 6h"
	DefaultHookTimeout      = 60 * time.Second
	DefaultLogMaxSize       = 50 // megabytes
	DefaultLogMaxAge        = 30 // days
	DefaultLogMaxBackups    = 7
	LockFileName            = ".podkey.lock"
	PartialSuffix           = ".part"
)
