package server

const uploadForm = `<!doctype html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Upload PDF for Foreclosure Records Extraction</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; background-color: #f4f4f9;
               display: flex; justify-content: center; align-items: center; height: 100vh; }
        .container { text-align: center; background-color: #fff; padding: 20px;
                     border-radius: 10px; box-shadow: 0 0 10px rgba(0, 0, 0, 0.1); }
        h1 { color: #333; }
        form { margin-top: 20px; }
        input[type="file"] { padding: 10px; border: 1px solid #ccc; border-radius: 5px; margin-bottom: 10px; }
        input[type="submit"] { background-color: #007bff; color: #fff; border: none; padding: 10px 20px;
                               border-radius: 5px; cursor: pointer; font-size: 16px; }
        input[type="submit"]:hover { background-color: #0056b3; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Upload PDF for Foreclosure Records Extraction</h1>
        <form method="POST" enctype="multipart/form-data">
            <input type="file" name="file" accept=".pdf" required>
            <br>
            <input type="submit" value="Upload">
        </form>
    </div>
</body>
</html>
`
