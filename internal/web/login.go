package web

const loginHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>csvview · Login</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    background: #fafafa;
    color: #18181b;
    min-height: 100vh;
    display: flex;
    align-items: center;
    justify-content: center;
  }
  .login-card {
    width: 100%;
    max-width: 340px;
    background: #fff;
    border: 1px solid #e4e4e7;
    border-radius: 10px;
    padding: 24px;
  }
  .login-title { font-size: 16px; font-weight: 600; margin-bottom: 16px; }
  .login-error {
    background: #fee2e2;
    color: #991b1b;
    border-radius: 6px;
    padding: 8px 10px;
    font-size: 13px;
    margin-bottom: 12px;
  }
  label { display: block; font-size: 12px; color: #52525b; margin-bottom: 4px; }
  input {
    width: 100%;
    padding: 8px 10px;
    border: 1px solid #d4d4d8;
    border-radius: 6px;
    margin-bottom: 12px;
    font-size: 14px;
  }
  button {
    width: 100%;
    background: #2563eb;
    color: #fff;
    border: none;
    padding: 9px;
    border-radius: 6px;
    font-size: 14px;
    font-weight: 600;
    cursor: pointer;
  }
</style>
</head>
<body>
<form class="login-card" method="POST" action="/login">
  <div class="login-title">Sign in to csvview</div>
  <!--ERROR-->
  <label for="username">Username</label>
  <input id="username" name="username" autocomplete="username" required>
  <label for="password">Password</label>
  <input id="password" name="password" type="password" autocomplete="current-password" required>
  <button type="submit">Sign in</button>
</form>
</body>
</html>`
