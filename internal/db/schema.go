package db

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- PROJECT TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS project SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user ON project TYPE string;
    DEFINE FIELD IF NOT EXISTS name ON project TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON project TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated_at ON project TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS project_user ON project FIELDS user;

    -- ==========================================================================
    -- THREAD_REF TABLE (conversation handles)
    -- ==========================================================================
    -- One remote assistant thread per (user, project). The unique index is the
    -- conditional create that prevents concurrent requests from racing a
    -- duplicate handle into existence.
    DEFINE TABLE IF NOT EXISTS thread_ref SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user ON thread_ref TYPE string;
    DEFINE FIELD IF NOT EXISTS project ON thread_ref TYPE string;
    DEFINE FIELD IF NOT EXISTS thread_id ON thread_ref TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON thread_ref TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS thread_ref_owner ON thread_ref FIELDS user, project UNIQUE;

    -- ==========================================================================
    -- MESSAGE TABLE (chat history)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS message SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user ON message TYPE string;
    DEFINE FIELD IF NOT EXISTS project ON message TYPE string;
    DEFINE FIELD IF NOT EXISTS role ON message TYPE string ASSERT $value IN ["user", "assistant"];
    DEFINE FIELD IF NOT EXISTS content ON message TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON message TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS message_owner ON message FIELDS user, project;

    -- ==========================================================================
    -- TASK TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS task SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user ON task TYPE string;
    DEFINE FIELD IF NOT EXISTS project ON task TYPE string;
    DEFINE FIELD IF NOT EXISTS title ON task TYPE string;
    DEFINE FIELD IF NOT EXISTS status ON task TYPE string DEFAULT "open"
        ASSERT $value IN ["open", "running", "done", "failed"];
    DEFINE FIELD IF NOT EXISTS result ON task TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created_at ON task TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated_at ON task TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS task_owner ON task FIELDS user, project;

    -- ==========================================================================
    -- AGENT TABLE (stored completion profiles)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS agent SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user ON agent TYPE string;
    DEFINE FIELD IF NOT EXISTS name ON agent TYPE string;
    DEFINE FIELD IF NOT EXISTS description ON agent TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS model ON agent TYPE string;
    DEFINE FIELD IF NOT EXISTS instructions ON agent TYPE string;
    DEFINE FIELD IF NOT EXISTS is_system ON agent TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS created_at ON agent TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS agent_user ON agent FIELDS user;

    -- ==========================================================================
    -- SHARE TABLE (read-only project access keys)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS share SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS access_key ON share TYPE string;
    DEFINE FIELD IF NOT EXISTS project ON share TYPE string;
    DEFINE FIELD IF NOT EXISTS owner ON share TYPE string;
    DEFINE FIELD IF NOT EXISTS is_active ON share TYPE bool DEFAULT true;
    DEFINE FIELD IF NOT EXISTS created_at ON share TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS share_key ON share FIELDS access_key UNIQUE;
`
