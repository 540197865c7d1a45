package sqlinline

const QCreateKVTable = `--sql 3b1f6a52-9c4e-4d2a-8f61-0c7e2d9a4b13
create table if not exists app_kv (
    key text primary key,
    value jsonb not null,
    updated_at timestamptz not null default now()
);
`

const QSelectKV = `--sql 7c2e9d41-5a3b-4f8e-b6d2-1e4f7a9c0b25
select value
from app_kv
where key = $1::text
limit 1;
`

const QUpsertKV = `--sql 9e4a1c73-2b6d-4e5f-a8c9-3d7b0f1e6a42
insert into app_kv (key, value, updated_at)
values ($1::text, $2::jsonb, now())
on conflict (key) do update set
    value = excluded.value,
    updated_at = now();
`

const QDeleteKV = `--sql 1d6b3e85-7f2a-4c9d-b0e4-5a8c2f6d9e71
delete from app_kv
where key = $1::text;
`

const QListKVKeys = `--sql 5f8c2a16-3e7b-4d1a-9c5e-7b0d4a2f8e93
select key
from app_kv
where key like $1::text || '%'
order by key;
`
