package sqlinline

const QAdminListSubscriptions = `--sql b215aeeb-8e4a-4da6-ab87-0d9dec61faba
select s.id, s.plan_name, s.total_price, s.status, s.subscription_date, u.full_name, u.email
from subscriptions s
join users u on u.email = s.user_email
order by s.subscription_date desc;
`

const QAdminDashboardStats = `--sql 698dee13-17a4-4a12-860f-7ad2a7293e1b
select
    count(*) as total_subscriptions,
    count(*) filter (where status = 'active') as active_subscriptions,
    coalesce(sum(total_price) filter (where status = 'active'), 0) as mrr
from subscriptions;
`
