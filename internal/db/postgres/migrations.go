package postgres

// SQL-миграции встроены в код для упрощения деплоя.
type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{1, "members", migration001Members},
	{2, "ledgers", migration002Ledgers},
	{3, "completions", migration003Completions},
	{4, "reminders", migration004Reminders},
	{5, "admin", migration005Admin},
}

const migration001Members = `
CREATE TABLE IF NOT EXISTS members (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255),
    first_name VARCHAR(255) NOT NULL DEFAULT '',
    last_name VARCHAR(255),
    joined_at TIMESTAMPTZ DEFAULT NOW(),
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW()
);
`

// Состояние журнала хранится целиком в JSONB: его формат версионирован в коде.
const migration002Ledgers = `
CREATE TABLE IF NOT EXISTS ledgers (
    user_id BIGINT PRIMARY KEY,
    state JSONB NOT NULL,
    current_exercise JSONB,
    updated_at TIMESTAMPTZ DEFAULT NOW()
);
`

const migration003Completions = `
CREATE TABLE IF NOT EXISTS completions (
    id UUID PRIMARY KEY,
    user_id BIGINT NOT NULL,
    exercise_id VARCHAR(64) NOT NULL,
    intensity INTEGER NOT NULL,
    points INTEGER NOT NULL,
    completed_on DATE NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_completions_user_created ON completions(user_id, created_at DESC);
`

const migration004Reminders = `
CREATE TABLE IF NOT EXISTS reminder_settings (
    user_id BIGINT PRIMARY KEY,
    enabled BOOLEAN NOT NULL DEFAULT FALSE,
    remind_at CHAR(5) NOT NULL,
    last_sent_on DATE,
    updated_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_reminder_settings_due ON reminder_settings(remind_at) WHERE enabled;
`

const migration005Admin = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    session_token VARCHAR(255) UNIQUE,
    authenticated_at TIMESTAMPTZ DEFAULT NOW(),
    expires_at TIMESTAMPTZ NOT NULL,
    last_activity TIMESTAMPTZ DEFAULT NOW(),
    is_active BOOLEAN DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_admin_sessions_user_id ON admin_sessions(user_id);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    attempt_time TIMESTAMPTZ DEFAULT NOW(),
    success BOOLEAN DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_admin_login_attempts_user ON admin_login_attempts(user_id, attempt_time);
`
