package store

const schema = `
-- One row per (user, card) pair, created lazily on the first review.
CREATE TABLE IF NOT EXISTS review_states (
    user_id          TEXT NOT NULL,
    card_id          TEXT NOT NULL,
    interval_days    REAL NOT NULL,
    ease_factor      REAL NOT NULL,
    due_at           DATETIME NOT NULL,
    repetitions      INTEGER NOT NULL DEFAULT 0,
    lapses           INTEGER NOT NULL DEFAULT 0,
    last_reviewed_at DATETIME NOT NULL,

    PRIMARY KEY (user_id, card_id)
);

-- Due-card selection scans a user's states ordered by due date.
CREATE INDEX IF NOT EXISTS idx_review_states_user_due
    ON review_states (user_id, due_at);

-- Append-only history of every review submitted.
CREATE TABLE IF NOT EXISTS review_logs (
    id            TEXT PRIMARY KEY,
    user_id       TEXT NOT NULL,
    card_id       TEXT NOT NULL,
    grade         INTEGER NOT NULL,
    reviewed_at   DATETIME NOT NULL,
    interval_days REAL NOT NULL,
    ease_factor   REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_review_logs_user
    ON review_logs (user_id, reviewed_at);
`
