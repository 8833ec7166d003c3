package sqlinline

const QInsertSubscription = `--sql 9b74e301-8971-4d7a-b675-549ed0d39dcf
insert into subscriptions (id, user_email, full_name, phone_number, allergies, plan_name, total_price, schedule, status, subscription_date)
values (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7::jsonb, 'active', now())
returning id, subscription_date;
`

const QSelectLatestSubscriptionByEmail = `--sql fe54c3a1-193c-485f-b0c4-1188f82c68e8
select id, user_email, full_name, phone_number, coalesce(allergies, ''), plan_name, total_price, schedule, status, subscription_date
from subscriptions
where user_email = $1
order by subscription_date desc
limit 1;
`

const QSelectSubscriptionByID = `--sql d3d6e3d6-f976-4046-81ce-608c8db445fe
select id, user_email, full_name, phone_number, coalesce(allergies, ''), plan_name, total_price, schedule, status, subscription_date
from subscriptions
where id = $1::uuid
limit 1;
`

const QUpdateSubscriptionStatus = `--sql d0edd107-1a86-4d30-9f57-eed99c9eb9fa
update subscriptions
set status = $2
where id = $1::uuid;
`

const QUpdateSubscriptionSchedule = `--sql 1f41b2d2-15e2-447f-a7e5-d0dbd8c5fb17
update subscriptions
set schedule = $2::jsonb
where id = $1::uuid;
`
