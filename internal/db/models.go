package db

import "time"

// Event maps byplakat.events, the canonical deduplicated event table.
// source_url is the sole duplicate guard at ingestion time; source and
// source_url are immutable once persisted.
type Event struct {
	EventID         int64      `gorm:"column:event_id;primaryKey;autoIncrement"`
	EventUUID       string     `gorm:"column:event_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	Slug            string     `gorm:"column:slug;type:text;not null"`
	Title           string     `gorm:"column:title;type:text;not null"`
	VenueName       string     `gorm:"column:venue_name;type:text;not null"`
	Bydel           string     `gorm:"column:bydel;type:text;not null"`
	Category        string     `gorm:"column:category;type:text;not null"`
	StartsAt        time.Time  `gorm:"column:starts_at;type:timestamptz;not null"`
	EndsAt          *time.Time `gorm:"column:ends_at;type:timestamptz"`
	Price           *string    `gorm:"column:price;type:text"`
	TicketURL       *string    `gorm:"column:ticket_url;type:text"`
	SourceURL       string     `gorm:"column:source_url;type:text;not null;unique"`
	ImageURL        *string    `gorm:"column:image_url;type:text"`
	Description     string     `gorm:"column:description;type:text;not null;default:''"`
	DescriptionLang string     `gorm:"column:description_lang;type:text;not null;default:und"`
	Source          string     `gorm:"column:source;type:text;not null"`
	Status          string     `gorm:"column:status;type:text;not null;default:upcoming"`
	CreatedAt       time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Event) TableName() string { return "byplakat.events" }

// ScraperRun maps byplakat.scraper_runs, the append-only run ledger the
// health classifier reads. Rows are never updated or deleted from here.
type ScraperRun struct {
	RunID        int64     `gorm:"column:run_id;primaryKey;autoIncrement"`
	ScraperName  string    `gorm:"column:scraper_name;type:text;not null"`
	Found        int       `gorm:"column:found;type:integer;not null;default:0"`
	Inserted     int       `gorm:"column:inserted;type:integer;not null;default:0"`
	Errored      bool      `gorm:"column:errored;type:boolean;not null;default:false"`
	ErrorMessage *string   `gorm:"column:error_message;type:text"`
	Skipped      bool      `gorm:"column:skipped;type:boolean;not null;default:false"`
	RunAt        time.Time `gorm:"column:run_at;type:timestamptz;not null;default:now()"`
}

func (ScraperRun) TableName() string { return "byplakat.scraper_runs" }

func autoMigrateModels() []any {
	return []any{
		&Event{},
		&ScraperRun{},
	}
}
