package sqlinline

const QInsertUser = `--sql bcfc7444-dbf5-4a4d-916f-4ed84fd5e12e
insert into users (id, full_name, email, password_hash, role, created_at, updated_at)
values (gen_random_uuid(), $1, $2, $3, 'user', now(), now())
returning id, role;
`

const QSelectUserByEmail = `--sql 69118082-a366-46d8-a5dd-32871418c550
select id, full_name, email, password_hash, coalesce(phone_number, ''), role, created_at, updated_at
from users
where email = $1
limit 1;
`

const QSelectUserByID = `--sql 39522323-1bc4-4f6b-a7c3-9479b9936d36
select id, full_name, email, password_hash, coalesce(phone_number, ''), role, created_at, updated_at
from users
where id = $1::uuid
limit 1;
`

const QUpdateUserProfile = `--sql 9008ccfa-6bf9-4889-a224-4678eb2ddf0e
update users
set full_name = $2,
    phone_number = $3,
    updated_at = now()
where id = $1::uuid
returning id, full_name, email, coalesce(phone_number, ''), role;
`

const QSetResetToken = `--sql 79c4f8bc-e78a-4922-b4e3-b447e0788dc7
update users
set reset_token_hash = $2,
    reset_token_expires = $3,
    updated_at = now()
where email = $1
returning id;
`

const QResetPassword = `--sql eba101bf-2698-497b-a4fe-41b8ba73b0de
update users
set password_hash = $2,
    reset_token_hash = null,
    reset_token_expires = null,
    updated_at = now()
where reset_token_hash = $1
  and reset_token_expires > now()
returning id;
`

const QPromoteUserToAdmin = `--sql b8c59f61-0943-4f8b-9f41-50f90fc9638f
update users
set role = 'admin',
    updated_at = now()
where email = $1
returning id, full_name, email, role;
`
